package snapshot

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/metrics"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

type fakeReader struct {
	results []contract.ReadResult
	err     error

	LastAddr common.Address
}

func (f *fakeReader) ReadBatch(ctx context.Context, user common.Address) ([]contract.ReadResult, error) {
	f.LastAddr = user
	return f.results, f.err
}

var (
	bob   = models.Nominee{Name: "bob", Relation: "son", Address: common.HexToAddress("0xb2"), ShareHundredths: 2550}
	carol = models.Inheritance{DepositorName: "carol", DepositorAddress: common.HexToAddress("0xd3"), ShareHundredths: 10000, AbsoluteShareAmount: big.NewInt(1e18)}
)

func okResults() []contract.ReadResult {
	return []contract.ReadResult{
		{Func: contract.ReadIsNewUser, Value: false},
		{Func: contract.ReadName, Value: "alice"},
		{Func: contract.ReadIsActive, Value: true},
		{Func: contract.ReadTotalDeposit, Value: big.NewInt(5e17)},
		{Func: contract.ReadNominees, Value: []models.Nominee{bob}},
		{Func: contract.ReadLastCheckIn, Value: uint64(1700000000)},
		{Func: contract.ReadInactivityPeriod, Value: uint64(259200)},
		{Func: contract.ReadInheritances, Value: []models.Inheritance{carol}},
	}
}

func failing(results []contract.ReadResult, fns ...contract.ReadFunc) []contract.ReadResult {
	out := make([]contract.ReadResult, len(results))
	copy(out, results)
	for i := range out {
		for _, fn := range fns {
			if out[i].Func == fn {
				out[i].Value = nil
				out[i].Err = &contract.Error{Op: fn.Method(), Kind: contract.KindReverted, Err: errors.New("execution reverted")}
			}
		}
	}
	return out
}

func aggErrKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var ae *AggregationError
	require.ErrorAs(t, err, &ae)
	return ae.Kind
}

func TestMerge_AllReadsSucceed(t *testing.T) {
	snap, err := Merge(okResults(), nil)
	require.NoError(t, err)

	want := &models.UserSnapshot{
		Name:             "alice",
		IsActive:         true,
		Balance:          big.NewInt(5e17),
		Nominees:         []models.Nominee{bob},
		LastCheckIn:      1700000000,
		InactivityPeriod: 259200,
		Inheritances:     []models.Inheritance{carol},
	}
	if diff := cmp.Diff(want, snap, bigIntComparer); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptyResultsUnreachable(t *testing.T) {
	_, err := Merge(nil, nil)
	assert.Equal(t, Unreachable, aggErrKind(t, err))
	assert.Equal(t, "failed to fetch user data", err.Error())
}

func TestMerge_StatusUnknownRegardlessOfOthers(t *testing.T) {
	prev := &models.UserSnapshot{Name: "alice"}
	for _, p := range []*models.UserSnapshot{nil, prev} {
		_, err := Merge(failing(okResults(), contract.ReadIsNewUser), p)
		assert.Equal(t, StatusUnknown, aggErrKind(t, err))
		assert.Contains(t, err.Error(), "failed to check user status")
	}
}

func TestMerge_NewUserCarriesNothingElse(t *testing.T) {
	results := okResults()
	results[0].Value = true

	snap, err := Merge(results, &models.UserSnapshot{Name: "stale", IsActive: true})
	require.NoError(t, err)
	if diff := cmp.Diff(&models.UserSnapshot{IsNewUser: true}, snap, bigIntComparer); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NewUserIgnoresNameFailure(t *testing.T) {
	results := failing(okResults(), contract.ReadName)
	results[0].Value = true

	snap, err := Merge(results, nil)
	require.NoError(t, err)
	assert.True(t, snap.IsNewUser)
}

func TestMerge_ProfileUnavailable(t *testing.T) {
	_, err := Merge(failing(okResults(), contract.ReadName), &models.UserSnapshot{Name: "alice"})
	assert.Equal(t, ProfileUnavailable, aggErrKind(t, err))
	assert.Contains(t, err.Error(), "failed to fetch user name")
}

func TestMerge_MissingIsNewUserResult(t *testing.T) {
	_, err := Merge(okResults()[1:], nil)
	assert.Equal(t, StatusUnknown, aggErrKind(t, err))
}

func TestMerge_FirstLoadDefaults(t *testing.T) {
	results := failing(okResults(),
		contract.ReadIsActive,
		contract.ReadTotalDeposit,
		contract.ReadNominees,
		contract.ReadLastCheckIn,
		contract.ReadInactivityPeriod,
		contract.ReadInheritances,
	)

	snap, err := Merge(results, nil)
	require.NoError(t, err)

	want := &models.UserSnapshot{Name: "alice", Balance: big.NewInt(0)}
	if diff := cmp.Diff(want, snap, bigIntComparer); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_RefreshKeepsPreviousValues(t *testing.T) {
	prev := &models.UserSnapshot{
		Name:             "old",
		IsActive:         true,
		Balance:          big.NewInt(9),
		Nominees:         []models.Nominee{bob},
		LastCheckIn:      100,
		InactivityPeriod: 200,
		Inheritances:     []models.Inheritance{carol},
	}
	before := prev.Clone()

	results := failing(okResults(),
		contract.ReadIsActive,
		contract.ReadTotalDeposit,
		contract.ReadNominees,
		contract.ReadLastCheckIn,
		contract.ReadInactivityPeriod,
		contract.ReadInheritances,
	)

	snap, err := Merge(results, prev)
	require.NoError(t, err)

	want := before.Clone()
	want.Name = "alice"
	if diff := cmp.Diff(want, snap, bigIntComparer); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	snap.Balance.SetInt64(0)
	if diff := cmp.Diff(before, prev, bigIntComparer); diff != "" {
		t.Fatalf("previous snapshot mutated (-want +got):\n%s", diff)
	}
}

func TestMerge_RefreshPrefersFreshValues(t *testing.T) {
	prev := &models.UserSnapshot{Name: "old", IsActive: false, Balance: big.NewInt(1), LastCheckIn: 1}

	snap, err := Merge(failing(okResults(), contract.ReadNominees), prev)
	require.NoError(t, err)

	assert.True(t, snap.IsActive)
	assert.Equal(t, int64(5e17), snap.Balance.Int64())
	assert.Equal(t, uint64(1700000000), snap.LastCheckIn)
	assert.Nil(t, snap.Nominees)
}

func TestAggregator_Fetch(t *testing.T) {
	addr := common.HexToAddress("0xa1")
	m := metrics.New()
	r := &fakeReader{results: failing(okResults(), contract.ReadNominees)}
	a := NewAggregator(r, logging.Discard(), m)

	snap, err := a.Fetch(context.Background(), addr, nil)
	require.NoError(t, err)
	assert.Equal(t, addr, r.LastAddr)
	assert.Equal(t, "alice", snap.Name)

	problems, err := testutil.GatherAndCount(m.Registry(), "afterlife_client_degraded_fields_total")
	require.NoError(t, err)
	assert.Equal(t, 1, problems)
}

func TestAggregator_FetchTransportFailure(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	a := NewAggregator(&fakeReader{err: boom}, logging.Discard(), nil)

	_, err := a.Fetch(context.Background(), common.Address{}, &models.UserSnapshot{})
	assert.Equal(t, Unreachable, aggErrKind(t, err))
	assert.ErrorIs(t, err, boom)
}
