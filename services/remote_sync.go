package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// SyncResult is the outcome of a best-effort remote call. Callers log it and
// carry on; it is never turned into a request failure.
type SyncResult struct {
	ExternalID string
	Skipped    bool
	Err        error
}

func (r SyncResult) OK() bool {
	return !r.Skipped && r.Err == nil
}

var errRemoteNotConfigured = errors.New("remote booking platform not configured")

// RemoteSyncAdapter mirrors local reservations onto the external platform.
type RemoteSyncAdapter struct {
	client  RemoteBookingClient
	store   *ReservationStore
	timeout time.Duration
}

func NewRemoteSyncAdapter(client RemoteBookingClient, store *ReservationStore, timeout time.Duration) *RemoteSyncAdapter {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &RemoteSyncAdapter{client: client, store: store, timeout: timeout}
}

func (ra *RemoteSyncAdapter) IsConfigured() bool {
	return ra.client != nil && ra.client.IsConfigured()
}

func (ra *RemoteSyncAdapter) WidgetEmbedURL() string {
	if ra.client == nil {
		return ""
	}
	return ra.client.WidgetEmbedURL()
}

// CreateRemote registers the reservation on the platform.
func (ra *RemoteSyncAdapter) CreateRemote(ctx context.Context, res *models.Reservation) (result SyncResult) {
	if !ra.IsConfigured() {
		return SyncResult{Skipped: true, Err: errRemoteNotConfigured}
	}
	defer ra.recoverInto(&result, "create")

	ctx, cancel := context.WithTimeout(ctx, ra.timeout)
	defer cancel()

	id, err := ra.client.CreateReservation(ctx, res)
	if err != nil {
		ra.logFailure("create", res.ID, "", err)
		return SyncResult{Err: err}
	}
	return SyncResult{ExternalID: id}
}

// UpdateRemote pushes changed fields for an already mirrored reservation.
func (ra *RemoteSyncAdapter) UpdateRemote(ctx context.Context, externalID string, fields map[string]interface{}) (result SyncResult) {
	if !ra.IsConfigured() {
		return SyncResult{Skipped: true, Err: errRemoteNotConfigured}
	}
	if externalID == "" {
		return SyncResult{Skipped: true, Err: errors.New("reservation has no external id")}
	}
	defer ra.recoverInto(&result, "update")

	ctx, cancel := context.WithTimeout(ctx, ra.timeout)
	defer cancel()

	if err := ra.client.UpdateReservation(ctx, externalID, fields); err != nil {
		ra.logFailure("update", 0, externalID, err)
		return SyncResult{ExternalID: externalID, Err: err}
	}
	return SyncResult{ExternalID: externalID}
}

// CancelRemote cancels the mirrored reservation.
func (ra *RemoteSyncAdapter) CancelRemote(ctx context.Context, externalID string) (result SyncResult) {
	if !ra.IsConfigured() {
		return SyncResult{Skipped: true, Err: errRemoteNotConfigured}
	}
	if externalID == "" {
		return SyncResult{Skipped: true, Err: errors.New("reservation has no external id")}
	}
	defer ra.recoverInto(&result, "cancel")

	ctx, cancel := context.WithTimeout(ctx, ra.timeout)
	defer cancel()

	if err := ra.client.CancelReservation(ctx, externalID); err != nil {
		ra.logFailure("cancel", 0, externalID, err)
		return SyncResult{ExternalID: externalID, Err: err}
	}
	return SyncResult{ExternalID: externalID}
}

// SyncCreated mirrors a freshly created reservation and, on success, stores
// the sync state on it. res is updated in place.
func (ra *RemoteSyncAdapter) SyncCreated(ctx context.Context, res *models.Reservation) SyncResult {
	result := ra.CreateRemote(ctx, res)
	if !result.OK() {
		return result
	}
	if err := ra.store.MarkSynced(ctx, res.ID, result.ExternalID); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"reservation_id": res.ID,
			"external_id":    result.ExternalID,
		}).Errorf("Remote reservation created but sync state not saved: %v", err)
		return SyncResult{ExternalID: result.ExternalID, Err: err}
	}
	res.Synced = true
	res.ExternalReservationID = result.ExternalID
	return result
}

func (ra *RemoteSyncAdapter) recoverInto(result *SyncResult, op string) {
	if r := recover(); r != nil {
		err := fmt.Errorf("remote %s panicked: %v", op, r)
		ra.logFailure(op, 0, result.ExternalID, err)
		*result = SyncResult{ExternalID: result.ExternalID, Err: err}
	}
}

func (ra *RemoteSyncAdapter) logFailure(op string, reservationID uint, externalID string, err error) {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"op":             op,
		"reservation_id": reservationID,
		"external_id":    externalID,
	}).Warnf("Remote booking sync failed: %v", err)
}

// logSync records the outcome of a sync attempt. Skips are quiet.
func logSync(op string, reservationID uint, result SyncResult) {
	if result.Skipped {
		return
	}
	if result.Err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"op":             op,
			"reservation_id": reservationID,
		}).Warnf("Reservation kept locally, remote sync failed: %v", result.Err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"op":             op,
		"reservation_id": reservationID,
		"external_id":    result.ExternalID,
	}).Info("Reservation mirrored on remote platform")
}
