package claim

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfest-backend/models"
	"propfest-backend/voucher"
)

const testSeed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
const testWallet = "0x000000000000000000000000000000000000beef"

// memSessionStore mimics the Postgres store's claim semantics: the
// claimed flag flips atomically under a lock, the transfer runs while
// the lock is held, and a failed transfer leaves the flag unset.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.GameSession
}

func (m *memSessionStore) GetSession(_ context.Context, id string) (*models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, voucher.ErrSessionNotFound
}

func (m *memSessionStore) FinalizeClaim(ctx context.Context, sessionID string, transfer func(ctx context.Context) (string, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return "", voucher.ErrSessionNotFound
	}
	if s.VoucherClaimed {
		return "", voucher.ErrAlreadyClaimed
	}
	txID, err := transfer(ctx)
	if err != nil {
		return "", err
	}
	s.VoucherClaimed = true
	return txID, nil
}

type memEventStore struct {
	events map[string]*models.Event
}

func (m *memEventStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, errors.New("event not found")
}

type fakeChain struct {
	mu          sync.Mutex
	optedIn     map[string]bool // wallet|assetID
	transfers   int
	optInErr    error
	transferErr error
}

func chainKey(wallet, assetID string) string { return wallet + "|" + assetID }

func (f *fakeChain) IsOptedIn(_ context.Context, wallet, assetID string) (bool, error) {
	if f.optInErr != nil {
		return false, f.optInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optedIn[chainKey(wallet, assetID)], nil
}

func (f *fakeChain) BuildOptInTxn(_ context.Context, wallet, assetID string) ([]byte, error) {
	return []byte("unsigned-optin:" + chainKey(wallet, assetID)), nil
}

func (f *fakeChain) TransferAsset(_ context.Context, wallet, assetID string, amount uint64) (string, error) {
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers++
	return "0xtx1234", nil
}

type fixture struct {
	sessions *memSessionStore
	events   *memEventStore
	chain    *fakeChain
	orch     *Orchestrator
	signer   *voucher.Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := voucher.NewSigner(testSeed)
	require.NoError(t, err)

	wallet := testWallet
	tier := "bronze"
	sessions := &memSessionStore{sessions: map[string]*models.GameSession{
		"session-1": {
			ID:           "session-1",
			EventID:      "event-1",
			PlayerWallet: &wallet,
			Zone:         "A1",
			Score:        35,
			TargetsHit:   3,
			RewardTier:   &tier,
		},
	}}
	events := &memEventStore{events: map[string]*models.Event{
		"event-1": {
			ID: "event-1",
			Rewards: models.RewardThresholds{
				BronzeThreshold: 30,
				SilverThreshold: 60,
				GoldThreshold:   100,
				BronzeAssetID:   "101",
				SilverAssetID:   "102",
				GoldAssetID:     "103",
			},
		},
	}}
	chain := &fakeChain{optedIn: make(map[string]bool)}

	verifier := voucher.NewVerifier(signer, sessions)
	return &fixture{
		sessions: sessions,
		events:   events,
		chain:    chain,
		orch:     NewOrchestrator(sessions, events, chain, verifier),
		signer:   signer,
	}
}

func (f *fixture) mintVoucher(t *testing.T, sessionID string) *models.SignedVoucher {
	t.Helper()
	session, err := f.sessions.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	event, err := f.events.GetEvent(context.Background(), session.EventID)
	require.NoError(t, err)

	sv, err := voucher.NewIssuer(f.signer, 0).Issue(session, event)
	require.NoError(t, err)
	require.NotNil(t, sv)
	return sv
}

func (f *fixture) claimed(t *testing.T, sessionID string) bool {
	t.Helper()
	s, err := f.sessions.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	return s.VoucherClaimed
}

func TestPrepareClaimWalletRequired(t *testing.T) {
	f := newFixture(t)
	sv := f.mintVoucher(t, "session-1")
	sv.VoucherData.Wallet = models.WalletUnclaimed

	// The sentinel is rejected before any verification runs, so even the
	// now-tampered voucher gets the wallet error, not a hash error.
	_, err := f.orch.PrepareClaim(context.Background(), sv)
	assert.ErrorIs(t, err, ErrWalletRequired)
	assert.False(t, f.claimed(t, "session-1"))
	assert.Zero(t, f.chain.transfers)
}

func TestPrepareClaimNeedsOptInThenComplete(t *testing.T) {
	f := newFixture(t)
	sv := f.mintVoucher(t, "session-1")

	outcome, err := f.orch.PrepareClaim(context.Background(), sv)
	require.NoError(t, err)

	optIn, ok := outcome.(OptInRequired)
	require.True(t, ok, "expected OptInRequired, got %T", outcome)
	assert.Equal(t, "101", optIn.AssetID)
	assert.Equal(t, "session-1", optIn.SessionID)
	assert.Equal(t, "bronze", optIn.Tier)
	assert.NotEmpty(t, optIn.UnsignedTxn)

	// Nothing is claimed while the opt-in round trip is pending.
	assert.False(t, f.claimed(t, "session-1"))
	assert.Zero(t, f.chain.transfers)

	// Player signs and submits the opt-in, then completes the claim.
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	out, err := f.orch.CompleteClaim(context.Background(), CompleteClaimRequest{
		SessionID: "session-1",
		OptInTxID: "0xoptin",
		Wallet:    testWallet,
		AssetID:   "101",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xtx1234", out.TxID)
	assert.True(t, f.claimed(t, "session-1"))
	assert.Equal(t, 1, f.chain.transfers)
}

func TestPrepareClaimAlreadyOptedIn(t *testing.T) {
	f := newFixture(t)
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	sv := f.mintVoucher(t, "session-1")

	outcome, err := f.orch.PrepareClaim(context.Background(), sv)
	require.NoError(t, err)

	done, ok := outcome.(Completed)
	require.True(t, ok, "expected Completed, got %T", outcome)
	assert.Equal(t, "0xtx1234", done.TxID)
	assert.Equal(t, "bronze", done.Tier)
	assert.True(t, f.claimed(t, "session-1"))
	assert.Equal(t, 1, f.chain.transfers)
}

func TestClaimExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	sv := f.mintVoucher(t, "session-1")

	_, err := f.orch.PrepareClaim(context.Background(), sv)
	require.NoError(t, err)

	// Re-submitting the same voucher must fail deterministically.
	for i := 0; i < 3; i++ {
		_, err = f.orch.PrepareClaim(context.Background(), sv)
		assert.ErrorIs(t, err, voucher.ErrAlreadyClaimed)
	}
	_, err = f.orch.CompleteClaim(context.Background(), CompleteClaimRequest{
		SessionID: "session-1", Wallet: testWallet, AssetID: "101",
	})
	assert.ErrorIs(t, err, voucher.ErrAlreadyClaimed)

	assert.Equal(t, 1, f.chain.transfers)
}

func TestConcurrentClaimsTransferOnce(t *testing.T) {
	f := newFixture(t)
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	sv := f.mintVoucher(t, "session-1")

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.PrepareClaim(context.Background(), sv)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, voucher.ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one racer wins")
	assert.Equal(t, 1, f.chain.transfers)
}

func TestPrepareClaimAssetNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.events.events["event-1"].Rewards.BronzeAssetID = ""
	sv := f.mintVoucher(t, "session-1")

	_, err := f.orch.PrepareClaim(context.Background(), sv)
	assert.ErrorIs(t, err, ErrAssetNotConfigured)
	assert.False(t, f.claimed(t, "session-1"))
}

func TestPrepareClaimBlockchainUnavailable(t *testing.T) {
	f := newFixture(t)
	f.chain.optInErr = errors.New("connection refused")
	sv := f.mintVoucher(t, "session-1")

	_, err := f.orch.PrepareClaim(context.Background(), sv)
	assert.ErrorIs(t, err, ErrBlockchainUnavailable)
	assert.False(t, f.claimed(t, "session-1"))
}

func TestCompleteClaimOptInNotConfirmed(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.CompleteClaim(context.Background(), CompleteClaimRequest{
		SessionID: "session-1", Wallet: testWallet, AssetID: "101",
	})
	assert.ErrorIs(t, err, ErrOptInNotConfirmed)
	assert.False(t, f.claimed(t, "session-1"))
	assert.Zero(t, f.chain.transfers)

	// Retry after the opt-in lands succeeds.
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	out, err := f.orch.CompleteClaim(context.Background(), CompleteClaimRequest{
		SessionID: "session-1", Wallet: testWallet, AssetID: "101",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xtx1234", out.TxID)
	assert.True(t, f.claimed(t, "session-1"))
}

func TestTransferFailureLeavesSessionClaimable(t *testing.T) {
	f := newFixture(t)
	f.chain.optedIn[chainKey(testWallet, "101")] = true
	f.chain.transferErr = errors.New("node timeout")
	sv := f.mintVoucher(t, "session-1")

	_, err := f.orch.PrepareClaim(context.Background(), sv)
	assert.ErrorIs(t, err, ErrBlockchainUnavailable)
	assert.False(t, f.claimed(t, "session-1"), "failed transfer must not burn the voucher")

	// The same voucher still claims cleanly once the chain recovers.
	f.chain.transferErr = nil
	outcome, err := f.orch.PrepareClaim(context.Background(), sv)
	require.NoError(t, err)
	_, ok := outcome.(Completed)
	assert.True(t, ok)
	assert.True(t, f.claimed(t, "session-1"))
}

func TestPrepareClaimTierAssetMapping(t *testing.T) {
	f := newFixture(t)
	gold := "gold"
	f.sessions.sessions["session-1"].Score = 150
	f.sessions.sessions["session-1"].RewardTier = &gold
	sv := f.mintVoucher(t, "session-1")
	require.Equal(t, 3, sv.VoucherData.Tier)

	outcome, err := f.orch.PrepareClaim(context.Background(), sv)
	require.NoError(t, err)
	optIn, ok := outcome.(OptInRequired)
	require.True(t, ok)
	assert.Equal(t, "103", optIn.AssetID)
	assert.Equal(t, "gold", optIn.Tier)
}
