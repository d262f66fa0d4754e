package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
)

// RecipientRegistry is the persistent ledger of addresses that have received
// the automatic point grant. The sliding-window quota of the auto-assignment
// policy is enforced against this ledger, so reads must always observe the
// latest persisted state.
//
//go:generate mockgen -source=recipients.go -destination=../mocks/recipient_registry.go -package=mocks -mock_names=RecipientRegistry=MockRecipientRegistry
type RecipientRegistry interface {
	// GetAll returns every recipient record
	GetAll() ([]domain.RecipientRecord, error)

	// GetByAddress returns the record for an address (case-insensitive), or nil
	GetByAddress(address string) (*domain.RecipientRecord, error)

	// Add inserts a record, or merges into the existing record for the same
	// address and refreshes its TopUpDate
	Add(record domain.RecipientRecord) error

	// Update merges partial fields into an existing record. Updating an
	// unknown address fails with domain.ErrRecipientNotFound; it never
	// silently creates.
	Update(address string, update domain.RecipientUpdate) error

	// WithinWindow returns the records whose TopUpDate falls within the given
	// window of now. Evaluated fresh against persisted state on every call.
	WithinWindow(window time.Duration) ([]domain.RecipientRecord, error)

	// Size returns the total number of recipient records
	Size() (int, error)
}

// recipientRegistry persists the full record set as a JSON array. Every write
// re-reads the file, merges, and atomically replaces it (temp file + rename);
// concurrent updates to the same address resolve last-writer-wins.
type recipientRegistry struct {
	mu    sync.Mutex
	path  string
	fs    adapter.FileSystem
	json  adapter.JSON
	clock adapter.Clock
}

// NewRecipientRegistry creates a recipient registry persisted at path
func NewRecipientRegistry(path string, fs adapter.FileSystem, json adapter.JSON, clock adapter.Clock) RecipientRegistry {
	return &recipientRegistry{
		path:  path,
		fs:    fs,
		json:  json,
		clock: clock,
	}
}

// load reads the persisted record set. A missing file is an empty ledger.
func (r *recipientRegistry) load() ([]domain.RecipientRecord, error) {
	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recipient ledger: %w", err)
	}

	var records []domain.RecipientRecord
	if err := r.json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse recipient ledger: %w", err)
	}
	return records, nil
}

// persist atomically replaces the full record set on disk
func (r *recipientRegistry) persist(records []domain.RecipientRecord) error {
	data, err := r.json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recipient ledger: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := r.fs.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write recipient ledger: %w", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace recipient ledger: %w", err)
	}
	return nil
}

func (r *recipientRegistry) GetAll() ([]domain.RecipientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *recipientRegistry) GetByAddress(address string) (*domain.RecipientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	normalized := domain.NormalizeAddress(address)
	for i := range records {
		if domain.NormalizeAddress(records[i].Address) == normalized {
			record := records[i]
			return &record, nil
		}
	}
	return nil, nil
}

func (r *recipientRegistry) Add(record domain.RecipientRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	if record.TopUpDate.IsZero() {
		record.TopUpDate = r.clock.Now()
	}

	normalized := domain.NormalizeAddress(record.Address)
	for i := range records {
		if domain.NormalizeAddress(records[i].Address) != normalized {
			continue
		}
		// Re-grant: merge into the existing record rather than duplicating
		records[i].TopUpDate = record.TopUpDate
		if record.LockerAddress != nil {
			records[i].LockerAddress = record.LockerAddress
		}
		if record.LockerCheckedDate != nil {
			records[i].LockerCheckedDate = record.LockerCheckedDate
		}
		if record.LastChecked != nil {
			records[i].LastChecked = record.LastChecked
		}
		if record.Claimed {
			records[i].Claimed = true
		}
		return r.persist(records)
	}

	records = append(records, record)
	return r.persist(records)
}

func (r *recipientRegistry) Update(address string, update domain.RecipientUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	normalized := domain.NormalizeAddress(address)
	for i := range records {
		if domain.NormalizeAddress(records[i].Address) != normalized {
			continue
		}
		if update.TopUpDate != nil {
			records[i].TopUpDate = *update.TopUpDate
		}
		if update.LockerAddress != nil {
			records[i].LockerAddress = update.LockerAddress
		}
		if update.LockerCheckedDate != nil {
			records[i].LockerCheckedDate = update.LockerCheckedDate
		}
		if update.Claimed != nil {
			records[i].Claimed = *update.Claimed
		}
		if update.LastChecked != nil {
			records[i].LastChecked = update.LastChecked
		}
		return r.persist(records)
	}

	return fmt.Errorf("cannot update %s: %w", address, domain.ErrRecipientNotFound)
}

func (r *recipientRegistry) WithinWindow(window time.Duration) ([]domain.RecipientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	cutoff := r.clock.Now().Add(-window)
	recent := make([]domain.RecipientRecord, 0)
	for _, record := range records {
		if record.TopUpDate.After(cutoff) {
			recent = append(recent, record)
		}
	}
	return recent, nil
}

func (r *recipientRegistry) Size() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
