package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePublish_CountsByResult(t *testing.T) {
	ok := publishTotal.WithLabelValues("metrics-test", "library.toggled", resultOK)
	failed := publishTotal.WithLabelValues("metrics-test", "library.toggled", resultError)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	observePublish("metrics-test", "library.toggled", time.Now(), nil)
	observePublish("metrics-test", "library.toggled", time.Now(), nil)
	observePublish("metrics-test", "library.toggled", time.Now(), errors.New("broker down"))

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestObservePublish_RecordsDuration(t *testing.T) {
	before := testutil.CollectAndCount(publishDuration)

	observePublish("metrics-duration", "library.toggled", time.Now().Add(-20*time.Millisecond), nil)

	assert.Equal(t, before+1, testutil.CollectAndCount(publishDuration))
}
