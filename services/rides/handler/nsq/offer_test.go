package nsq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

type recordedNotify struct {
	userID string
	event  string
}

type fakeNotifier struct {
	notifies  []recordedNotify
	connected bool
}

func (f *fakeNotifier) NotifyUser(userID, event string, data interface{}) bool {
	f.notifies = append(f.notifies, recordedNotify{userID: userID, event: event})
	return f.connected
}

func TestHandleRideOffer(t *testing.T) {
	notifier := &fakeNotifier{connected: true}
	h := NewOfferHandler(notifier)

	offer := models.RideOffer{
		RideID:   uuid.NewString(),
		DriverID: uuid.NewString(),
		Fare:     19.60,
	}
	body, err := json.Marshal(offer)
	require.NoError(t, err)

	require.NoError(t, h.HandleRideOffer(body))
	require.Len(t, notifier.notifies, 1)
	assert.Equal(t, offer.DriverID, notifier.notifies[0].userID)
	assert.Equal(t, constants.EventRideOffer, notifier.notifies[0].event)
}

func TestHandleRideOfferMalformed(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewOfferHandler(notifier)

	// Malformed messages must be dropped, not requeued.
	assert.NoError(t, h.HandleRideOffer([]byte("{not json")))
	assert.Empty(t, notifier.notifies)
}

func TestHandleRideStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    models.RideStatus
		driverID  string
		delivered bool
		event     string
	}{
		{"cancelled reaches driver", models.RideStatusCancelled, uuid.NewString(), true, constants.EventRideCancelled},
		{"accepted reaches driver", models.RideStatusAccepted, uuid.NewString(), true, constants.EventDriverAssigned},
		{"completed not relayed", models.RideStatusCompleted, uuid.NewString(), false, ""},
		{"no driver assigned", models.RideStatusCancelled, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{connected: true}
			h := NewOfferHandler(notifier)

			body, err := json.Marshal(models.RideStatusEvent{
				RideID:   uuid.NewString(),
				Status:   tt.status,
				DriverID: tt.driverID,
			})
			require.NoError(t, err)

			require.NoError(t, h.HandleRideStatus(body))
			if tt.delivered {
				require.Len(t, notifier.notifies, 1)
				assert.Equal(t, tt.driverID, notifier.notifies[0].userID)
				assert.Equal(t, tt.event, notifier.notifies[0].event)
			} else {
				assert.Empty(t, notifier.notifies)
			}
		})
	}
}
