package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memCapture struct {
	id   string
	size int64
	at   time.Time
}

type memAccount struct {
	id         string
	identifier string
	endpoints  int64
	captures   []memCapture
}

// memRecordStore is an in-memory RecordStore + UsageReader used across the
// core tests. Deletions follow ascending arrival time with id as the
// tie-break, matching the SQL store's ordering.
type memRecordStore struct {
	mu       sync.Mutex
	accounts map[string]*memAccount
	order    []string

	snapshotErr      error
	deleteOlderErr   error
	countAndSumErr   map[string]error
	deleteOldestErr  map[string]error
	deleteOldestCall map[string]int
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{
		accounts:         map[string]*memAccount{},
		countAndSumErr:   map[string]error{},
		deleteOldestErr:  map[string]error{},
		deleteOldestCall: map[string]int{},
	}
}

func (s *memRecordStore) addAccount(id, identifier string, endpoints int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[id]; exists {
		return
	}
	s.accounts[id] = &memAccount{id: id, identifier: identifier, endpoints: endpoints}
	s.order = append(s.order, id)
}

func (s *memRecordStore) addCapture(accountID string, size int64, at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := s.accounts[accountID]
	id := fmt.Sprintf("%s-%d", accountID, len(account.captures))
	account.captures = append(account.captures, memCapture{id: id, size: size, at: at})
	return id
}

func (s *memRecordStore) captureIDs(accountID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := s.accounts[accountID]
	ids := make([]string, 0, len(account.captures))
	for _, capture := range account.captures {
		ids = append(ids, capture.id)
	}
	sort.Strings(ids)
	return ids
}

func (s *memRecordStore) CountAndSum(_ context.Context, accountID string) (RecordTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.countAndSumErr[accountID]; err != nil {
		return RecordTally{}, err
	}
	account, ok := s.accounts[accountID]
	if !ok {
		return RecordTally{}, nil
	}
	tally := RecordTally{}
	for _, capture := range account.captures {
		tally.Count++
		tally.TotalBytes += capture.size
	}
	return tally, nil
}

func (s *memRecordStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteOlderErr != nil {
		return 0, s.deleteOlderErr
	}
	var deleted int64
	for _, account := range s.accounts {
		kept := account.captures[:0]
		for _, capture := range account.captures {
			if capture.at.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, capture)
		}
		account.captures = kept
	}
	return deleted, nil
}

func (s *memRecordStore) DeleteOldestN(_ context.Context, accountID string, n int64) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteOldestCall[accountID]++
	if err := s.deleteOldestErr[accountID]; err != nil {
		return DeleteOutcome{}, err
	}
	account, ok := s.accounts[accountID]
	if !ok || n <= 0 {
		return DeleteOutcome{}, nil
	}
	sort.SliceStable(account.captures, func(i, j int) bool {
		if !account.captures[i].at.Equal(account.captures[j].at) {
			return account.captures[i].at.Before(account.captures[j].at)
		}
		return account.captures[i].id < account.captures[j].id
	})
	outcome := DeleteOutcome{}
	for int64(len(account.captures)) > 0 && outcome.Deleted < n {
		capture := account.captures[0]
		account.captures = account.captures[1:]
		outcome.Deleted++
		outcome.FreedBytes += capture.size
	}
	return outcome, nil
}

func (s *memRecordStore) Snapshot(_ context.Context) ([]AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	out := make([]AccountUsage, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.usageLocked(id))
	}
	return out, nil
}

func (s *memRecordStore) AccountUsage(_ context.Context, accountID string) (AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return AccountUsage{}, fmt.Errorf("account %s not found", accountID)
	}
	return s.usageLocked(accountID), nil
}

func (s *memRecordStore) usageLocked(accountID string) AccountUsage {
	account := s.accounts[accountID]
	usage := AccountUsage{
		AccountID:     account.id,
		Identifier:    account.identifier,
		EndpointCount: account.endpoints,
	}
	for _, capture := range account.captures {
		usage.RecordCount++
		usage.TotalBytes += capture.size
	}
	return usage
}

type capturingSender struct {
	mu   sync.Mutex
	sent []ReportMessage
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg ReportMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *capturingSender) messages() []ReportMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ReportMessage(nil), c.sent...)
}

func newTestService(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, store *memRecordStore, now time.Time, cfg Config, options ...Option) *Service {
	t.Helper()
	base := []Option{
		WithRecordStore(store),
		WithUsageReader(store),
		WithClock(func() time.Time { return now }),
	}
	service, err := NewService(cfg, append(base, options...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

var (
	_ RecordStore        = (*memRecordStore)(nil)
	_ UsageReader        = (*memRecordStore)(nil)
	_ NotificationSender = (*capturingSender)(nil)
)
