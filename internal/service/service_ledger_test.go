// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory double for the ledger, current-state, and
// recycle-bin repositories, mirroring the transactional append semantics.
type memStore struct {
	now     func() time.Time
	records map[string][]models.VersionRecord
	state   map[string]models.CurrentState
	entries map[string]models.RecycleBinEntry
}

func newMemStore(clock *time.Time) *memStore {
	return &memStore{
		now:     func() time.Time { return *clock },
		records: make(map[string][]models.VersionRecord),
		state:   make(map[string]models.CurrentState),
		entries: make(map[string]models.RecycleBinEntry),
	}
}

type memLedger struct{ *memStore }

func (m *memLedger) Append(_ context.Context, req models.OperationRequest, userID int64, retention time.Duration) (models.VersionRecord, error) {
	prior, hasPrior := m.state[req.ItemID]
	if hasPrior && prior.Status == models.StatusPermanentDeleted && req.Operation != models.OpPermanentDelete {
		return models.VersionRecord{}, store.ErrItemPermanentlyDeleted
	}

	now := m.now()
	record := models.VersionRecord{
		ID:               int64(len(m.records[req.ItemID]) + 1),
		UserID:           userID,
		ItemID:           req.ItemID,
		Version:          int64(len(m.records[req.ItemID])),
		Operation:        req.Operation,
		DeviceID:         req.DeviceID,
		ItemType:         req.ItemType,
		Status:           models.StatusForOperation(req.Operation),
		EncryptedPayload: req.EncryptedPayload,
		PayloadHash:      req.PayloadHash,
		Timestamp:        now,
	}
	m.records[req.ItemID] = append(m.records[req.ItemID], record)

	m.state[req.ItemID] = models.CurrentState{
		UserID:           userID,
		ItemID:           req.ItemID,
		ItemType:         req.ItemType,
		LatestVersion:    record.Version,
		Status:           record.Status,
		LastModified:     now,
		EncryptedPayload: req.EncryptedPayload,
		PayloadHash:      req.PayloadHash,
	}

	switch req.Operation {
	case models.OpDelete:
		originalPayload := req.EncryptedPayload
		if originalPayload == "" && hasPrior {
			originalPayload = prior.EncryptedPayload
		}
		m.entries[req.ItemID] = models.RecycleBinEntry{
			UserID:                   userID,
			ItemID:                   req.ItemID,
			ItemType:                 req.ItemType,
			DeletedAt:                now,
			DeletedByDevice:          req.DeviceID,
			ExpiresAt:                now.Add(retention),
			Recoverable:              true,
			OriginalEncryptedPayload: originalPayload,
			DisplayName:              req.DisplayName,
		}
	case models.OpRestore, models.OpPermanentDelete:
		delete(m.entries, req.ItemID)
		if req.Operation == models.OpPermanentDelete {
			history := m.records[req.ItemID]
			for i := range history {
				history[i].Status = models.StatusPermanentDeleted
				history[i].EncryptedPayload = ""
			}
		}
	}

	return record, nil
}

func (m *memLedger) GetCurrentState(_ context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error) {
	var out []models.CurrentState
	for _, state := range m.state {
		if state.UserID != userID {
			continue
		}
		if len(statuses) == 0 {
			out = append(out, state)
			continue
		}
		for _, status := range statuses {
			if state.Status == status {
				out = append(out, state)
				break
			}
		}
	}
	return out, nil
}

func (m *memLedger) GetItemState(_ context.Context, _ int64, itemID string) (models.CurrentState, error) {
	state, ok := m.state[itemID]
	if !ok {
		return models.CurrentState{}, store.ErrItemNotFound
	}
	return state, nil
}

func (m *memLedger) GetItemVersionHistory(_ context.Context, _ int64, itemID string, limit uint64) ([]models.VersionRecord, error) {
	history := m.records[itemID]
	out := make([]models.VersionRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
		if limit > 0 && uint64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memLedger) GetRestorableRecord(_ context.Context, _ int64, itemID string) (models.VersionRecord, error) {
	history := m.records[itemID]

	byOperation := func(op models.Operation) (models.VersionRecord, bool) {
		for i := len(history) - 1; i >= 0; i-- {
			r := history[i]
			if r.Operation == op && r.Status != models.StatusPermanentDeleted && r.HasPayload() {
				return r, true
			}
		}
		return models.VersionRecord{}, false
	}

	for _, op := range []models.Operation{models.OpDelete, models.OpUpdate, models.OpCreate} {
		if r, ok := byOperation(op); ok {
			return r, nil
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		if r.Operation != models.OpPermanentDelete && r.Status != models.StatusPermanentDeleted && r.HasPayload() {
			return r, nil
		}
	}

	return models.VersionRecord{}, store.ErrItemNotFound
}

type memRecycle struct{ *memStore }

func (m *memRecycle) GetEntries(_ context.Context, userID int64) ([]models.RecycleBinEntry, error) {
	var out []models.RecycleBinEntry
	for _, entry := range m.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memRecycle) GetEntry(_ context.Context, _ int64, itemID string) (models.RecycleBinEntry, error) {
	entry, ok := m.entries[itemID]
	if !ok {
		return models.RecycleBinEntry{}, store.ErrRecycleEntryNotFound
	}
	return entry, nil
}

func (m *memRecycle) DeleteEntry(_ context.Context, _ int64, itemID string) error {
	if _, ok := m.entries[itemID]; !ok {
		return store.ErrRecycleEntryNotFound
	}
	delete(m.entries, itemID)
	return nil
}

func (m *memRecycle) GetExpiredEntries(_ context.Context, now time.Time) ([]models.RecycleBinEntry, error) {
	var out []models.RecycleBinEntry
	for _, entry := range m.entries {
		if entry.Expired(now) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func newTestLedgerService(clock *time.Time) (*ledgerService, *memStore) {
	mem := newMemStore(clock)
	return &ledgerService{
		ledger:     &memLedger{mem},
		recycleBin: &memRecycle{mem},
		classifier: store.NewPostgresErrorClassifier(),
		retention:  7 * 24 * time.Hour,
		logger:     logger.Nop(),
		now:        mem.now,
	}, mem
}

func payloadReq(itemID string, op models.Operation, payload string) models.OperationRequest {
	req := models.OperationRequest{
		ItemID:    itemID,
		Operation: op,
		ItemType:  "expense",
		DeviceID:  "device-a",
	}
	if payload != "" {
		req.EncryptedPayload = payload
		req.PayloadHash = utils.PayloadHash(payload)
	}
	return req
}

func TestCreateVersionedOperation_VersionsStrictlyIncrease(t *testing.T) {
	clock := time.Now()
	s, _ := newTestLedgerService(&clock)
	ctx := context.Background()

	for want := int64(0); want < 3; want++ {
		op := models.OpUpdate
		if want == 0 {
			op = models.OpCreate
		}
		record, err := s.CreateVersionedOperation(ctx, 1, payloadReq("item-1", op, "cipher"))
		if err != nil {
			t.Fatalf("append %d errored: %v", want, err)
		}
		if record.Version != want {
			t.Fatalf("version = %d, want %d", record.Version, want)
		}
	}
}

// flakyLedger fails the first Append with a driver error and then delegates.
type flakyLedger struct {
	store.LedgerRepository
	failures int
}

func (f *flakyLedger) Append(ctx context.Context, req models.OperationRequest, userID int64, retention time.Duration) (models.VersionRecord, error) {
	if f.failures > 0 {
		f.failures--
		return models.VersionRecord{}, fmt.Errorf("append tx: %w", &pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			TableName:      "version_records",
			ConstraintName: "version_records_user_id_item_id_version_key",
		})
	}
	return f.LedgerRepository.Append(ctx, req, userID, retention)
}

func TestCreateVersionedOperation_RetriesFirstInsertCollision(t *testing.T) {
	clock := time.Now()
	mem := newMemStore(&clock)

	// Two devices racing on a brand-new item: the loser hits a version
	// collision on insert and must win a later version in the same call,
	// not wait for the next sync tick.
	svc := &ledgerService{
		ledger:     &flakyLedger{LedgerRepository: &memLedger{mem}, failures: 1},
		recycleBin: &memRecycle{mem},
		classifier: store.NewPostgresErrorClassifier(),
		retention:  7 * 24 * time.Hour,
		logger:     logger.Nop(),
		now:        mem.now,
	}

	record, err := svc.CreateVersionedOperation(context.Background(), 1, payloadReq("item-1", models.OpCreate, "v1"))
	if err != nil {
		t.Fatalf("expected the collision to resolve in-call, got: %v", err)
	}
	if record.Version != 0 {
		t.Errorf("version = %d, want 0", record.Version)
	}
}

func TestCreateVersionedOperation_RejectsInvalidRequests(t *testing.T) {
	clock := time.Now()
	s, _ := newTestLedgerService(&clock)
	ctx := context.Background()

	_, err := s.CreateVersionedOperation(ctx, 1, models.OperationRequest{ItemID: "x", DeviceID: "d", ItemType: "expense", Operation: "UPSERT"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation for unknown op, got %v", err)
	}

	req := payloadReq("item-1", models.OpCreate, "cipher")
	req.PayloadHash = "deadbeef"
	_, err = s.CreateVersionedOperation(ctx, 1, req)
	if !errors.Is(err, ErrPayloadHashMismatch) {
		t.Fatalf("expected ErrPayloadHashMismatch, got %v", err)
	}
}

func TestRestoreItem_PrefersLatestDeletePayload(t *testing.T) {
	clock := time.Now()
	s, mem := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("item-1", models.OpCreate, "v0"))
	mustAppend(t, s, payloadReq("item-1", models.OpUpdate, "v1"))
	mustAppend(t, s, payloadReq("item-1", models.OpDelete, "v1-at-delete"))

	result, err := s.RestoreItem(ctx, 1, "item-1", "device-b")
	if err != nil {
		t.Fatalf("RestoreItem error: %v", err)
	}
	if !result.Success || result.Version != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}

	state := mem.state["item-1"]
	if state.Status != models.StatusActive {
		t.Errorf("status = %s, want active", state.Status)
	}
	if state.EncryptedPayload != "v1-at-delete" {
		t.Errorf("restored payload = %q, want the delete-time ciphertext", state.EncryptedPayload)
	}
	if _, ok := mem.entries["item-1"]; ok {
		t.Error("recycle bin entry should be gone after restore")
	}
}

func TestRestoreItem_FallsBackToCreateRecord(t *testing.T) {
	clock := time.Now()
	s, mem := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("item-1", models.OpCreate, "only-create-cipher"))
	// Delete without a payload; the entry snapshots the prior state but the
	// scan should already find the CREATE record.
	mem.entries["item-1"] = models.RecycleBinEntry{}
	mustAppend(t, s, payloadReq("item-1", models.OpDelete, ""))
	entry := mem.entries["item-1"]
	entry.OriginalEncryptedPayload = ""
	mem.entries["item-1"] = entry

	result, err := s.RestoreItem(ctx, 1, "item-1", "device-a")
	if err != nil {
		t.Fatalf("RestoreItem error: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	if mem.state["item-1"].EncryptedPayload != "only-create-cipher" {
		t.Errorf("restored payload = %q, want CREATE-record ciphertext", mem.state["item-1"].EncryptedPayload)
	}
}

func TestRestoreItem_NoPayloadAnywhereFails(t *testing.T) {
	clock := time.Now()
	s, mem := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("item-1", models.OpCreate, ""))
	mustAppend(t, s, payloadReq("item-1", models.OpDelete, ""))

	_, err := s.RestoreItem(ctx, 1, "item-1", "device-a")
	if !errors.Is(err, ErrNoRestorableData) {
		t.Fatalf("expected ErrNoRestorableData, got %v", err)
	}
	// Nothing was written: the failed restore appends no record.
	if len(mem.records["item-1"]) != 2 {
		t.Errorf("record count = %d, want 2", len(mem.records["item-1"]))
	}
}

func TestRestoreItem_ExpiredEntryIsNotRecoverable(t *testing.T) {
	clock := time.Now()
	s, _ := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("item-1", models.OpCreate, "cipher"))
	mustAppend(t, s, payloadReq("item-1", models.OpDelete, "cipher"))

	clock = clock.Add(8 * 24 * time.Hour)

	_, err := s.RestoreItem(ctx, 1, "item-1", "device-a")
	if !errors.Is(err, ErrItemNotRecoverable) {
		t.Fatalf("expected ErrItemNotRecoverable, got %v", err)
	}
}

func TestCleanupExpired_PurgesOnlyExpiredEntries(t *testing.T) {
	clock := time.Now()
	s, mem := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("old-item", models.OpCreate, "a"))
	mustAppend(t, s, payloadReq("old-item", models.OpDelete, "a"))

	clock = clock.Add(5 * 24 * time.Hour)
	mustAppend(t, s, payloadReq("fresh-item", models.OpCreate, "b"))
	mustAppend(t, s, payloadReq("fresh-item", models.OpDelete, "b"))

	clock = clock.Add(3 * 24 * time.Hour) // old: 8d gone, fresh: 3d

	purged, err := s.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired error: %v", err)
	}
	if len(purged) != 1 || purged[0] != "old-item" {
		t.Fatalf("purged = %v, want exactly [old-item]", purged)
	}

	if mem.state["old-item"].Status != models.StatusPermanentDeleted {
		t.Errorf("old-item status = %s, want permanently_deleted", mem.state["old-item"].Status)
	}
	if _, ok := mem.entries["fresh-item"]; !ok {
		t.Error("unexpired entry must survive the sweep")
	}
}

func TestPermanentDelete_NoResurrection(t *testing.T) {
	clock := time.Now()
	s, _ := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("item-1", models.OpCreate, "cipher"))
	mustAppend(t, s, payloadReq("item-1", models.OpDelete, "cipher"))

	if err := s.PermanentlyDeleteItem(ctx, 1, "item-1", "device-a"); err != nil {
		t.Fatalf("PermanentlyDeleteItem error: %v", err)
	}

	// A later CREATE for the same id must be rejected outright.
	_, err := s.CreateVersionedOperation(ctx, 1, payloadReq("item-1", models.OpCreate, "new-cipher"))
	if !errors.Is(err, store.ErrItemPermanentlyDeleted) {
		t.Fatalf("expected ErrItemPermanentlyDeleted, got %v", err)
	}

	// And restore has nothing to work with.
	_, err = s.RestoreItem(ctx, 1, "item-1", "device-a")
	if !errors.Is(err, store.ErrRecycleEntryNotFound) {
		t.Fatalf("expected ErrRecycleEntryNotFound, got %v", err)
	}
}

func TestGetRecycleBinItems_FiltersExpired(t *testing.T) {
	clock := time.Now()
	s, _ := newTestLedgerService(&clock)
	ctx := context.Background()

	mustAppend(t, s, payloadReq("old-item", models.OpCreate, "a"))
	mustAppend(t, s, payloadReq("old-item", models.OpDelete, "a"))

	clock = clock.Add(5 * 24 * time.Hour)
	mustAppend(t, s, payloadReq("fresh-item", models.OpCreate, "b"))
	mustAppend(t, s, payloadReq("fresh-item", models.OpDelete, "b"))

	clock = clock.Add(3 * 24 * time.Hour)

	items, err := s.GetRecycleBinItems(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecycleBinItems error: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "fresh-item" {
		t.Fatalf("items = %+v, want only fresh-item", items)
	}
}

func mustAppend(t *testing.T, s *ledgerService, req models.OperationRequest) {
	t.Helper()
	if _, err := s.CreateVersionedOperation(context.Background(), 1, req); err != nil {
		t.Fatalf("append %s %s failed: %v", req.Operation, req.ItemID, err)
	}
}
