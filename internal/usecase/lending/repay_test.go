package lending

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/testutil/memuow"
)

func TestRepay_InterestBeforePrincipal(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())
	uc := newTestUsecase(store, clk)

	if _, err := uc.Borrow(ctx, BorrowInput{Wallet: walletA, Token: tokenT, Amount: "500.00"}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	clk.AdvanceDays(30) // 4.11 of interest

	if _, err := uc.Repay(ctx, walletA, tokenT, "100.00"); err != nil {
		t.Fatalf("Repay: %v", err)
	}

	// 4.11 went to interest, 95.89 to principal.
	payoff, err := uc.Payoff(ctx, walletA, tokenT)
	if err != nil {
		t.Fatalf("Payoff: %v", err)
	}
	if payoff.Principal != "404.11" || payoff.Interest != "0.00" {
		t.Fatalf("after partial repay payoff = %+v, want principal 404.11 interest 0.00", payoff)
	}

	p, _ := store.Pool(tokenT)
	// Only the principal portion returns to available funds.
	if got := p.AvailableFunds.StringFixed(2); got != "999595.89" {
		t.Fatalf("available = %s, want 999595.89", got)
	}
	if got := p.TotalInterestEarned.StringFixed(2); got != "4.11" {
		t.Fatalf("TotalInterestEarned = %s, want 4.11", got)
	}

	dto, err := uc.GetLoan(ctx, walletA, tokenT)
	if err != nil {
		t.Fatalf("GetLoan: %v", err)
	}
	if dto.Status != string(loan.StatusActive) {
		t.Fatalf("loan status = %s, want still active", dto.Status)
	}
}

func TestRepay_OverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())
	uc := newTestUsecase(store, clk)

	if _, err := uc.Borrow(ctx, BorrowInput{Wallet: walletA, Token: tokenT, Amount: "500.00"}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	clk.AdvanceDays(30)

	_, err := uc.Repay(ctx, walletA, tokenT, "504.12")
	if !errors.Is(err, loan.ErrOverpayment) {
		t.Fatalf("Repay err = %v, want %v", err, loan.ErrOverpayment)
	}

	// Rejected payment changes nothing.
	p, _ := store.Pool(tokenT)
	if got := p.AvailableFunds.StringFixed(2); got != "999500.00" {
		t.Fatalf("available = %s, want untouched 999500.00", got)
	}
	payoff, err := uc.Payoff(ctx, walletA, tokenT)
	if err != nil {
		t.Fatalf("Payoff: %v", err)
	}
	if payoff.Payoff != "504.11" {
		t.Fatalf("payoff = %s, want 504.11", payoff.Payoff)
	}
}

func TestRepay_NoActiveLoan(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())
	uc := newTestUsecase(store, clk)

	_, err := uc.Repay(ctx, walletA, tokenT, "10.00")
	if !errors.Is(err, loan.ErrNoActiveLoan) {
		t.Fatalf("Repay err = %v, want %v", err, loan.ErrNoActiveLoan)
	}
}

func TestRepay_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	uc := newTestUsecase(store, clk)

	for _, raw := range []string{"0", "-1.00", "1.005", "abc"} {
		if _, err := uc.Repay(ctx, walletA, tokenT, raw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Repay(%q) err = %v, want %v", raw, err, ErrInvalidInput)
		}
	}
}

func TestRepay_SettlesScheduleItemsInDueOrder(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())

	pol := DefaultPolicy()
	pol.ScheduleShape = ShapeInstallments
	pol.Installments = 3
	uc := NewUsecase(store, pol, WithClock(clk.Now))

	if _, err := uc.Borrow(ctx, BorrowInput{Wallet: walletA, Token: tokenT, Amount: "500.00"}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	clk.AdvanceDays(10)

	// First installment is 168.03; paying exactly that settles item 1 only.
	if _, err := uc.Repay(ctx, walletA, tokenT, "168.03"); err != nil {
		t.Fatalf("Repay 1: %v", err)
	}
	dto, err := uc.GetLoan(ctx, walletA, tokenT)
	if err != nil {
		t.Fatalf("GetLoan: %v", err)
	}
	wantStatuses := []string{string(loan.SchedulePaid), string(loan.SchedulePending), string(loan.SchedulePending)}
	for i, it := range dto.Schedule {
		if it.Status != wantStatuses[i] {
			t.Fatalf("after repay 1, item %d status = %s, want %s", i+1, it.Status, wantStatuses[i])
		}
	}

	// 200 more pushes cumulative cover past item 2 but not item 3.
	if _, err := uc.Repay(ctx, walletA, tokenT, "200.00"); err != nil {
		t.Fatalf("Repay 2: %v", err)
	}
	dto, err = uc.GetLoan(ctx, walletA, tokenT)
	if err != nil {
		t.Fatalf("GetLoan: %v", err)
	}
	wantStatuses = []string{string(loan.SchedulePaid), string(loan.SchedulePaid), string(loan.SchedulePending)}
	for i, it := range dto.Schedule {
		if it.Status != wantStatuses[i] {
			t.Fatalf("after repay 2, item %d status = %s, want %s", i+1, it.Status, wantStatuses[i])
		}
	}
}

// fakeNotifier records settlement ref calls and hands back deterministic refs.
type fakeNotifier struct {
	calls int
	fail  bool
}

func (f *fakeNotifier) SettlementRef(ctx context.Context, loanID string, seq int, amount decimal.Decimal) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("gateway down")
	}
	return fmt.Sprintf("0x%064d", seq), nil
}

func TestRepay_FullPayoffStampsSettlementRefs(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())

	notifier := &fakeNotifier{}
	uc := NewUsecase(store, DefaultPolicy(), WithClock(clk.Now), WithSettlementNotifier(notifier))

	if _, err := uc.Borrow(ctx, BorrowInput{Wallet: walletA, Token: tokenT, Amount: "500.00"}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	clk.AdvanceDays(30)
	if _, err := uc.Repay(ctx, walletA, tokenT, "504.11"); err != nil {
		t.Fatalf("Repay: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}

	l, ok := store.Loan(loanIDOf(t, store))
	if !ok {
		t.Fatalf("loan row missing")
	}
	if l.Status != loan.StatusRepaid {
		t.Fatalf("loan status = %s, want repaid", l.Status)
	}
	items := store.Schedule(l.ID)
	if len(items) != 1 || items[0].SettlementRef != fmt.Sprintf("0x%064d", 1) {
		t.Fatalf("settlement ref not stamped: %+v", items)
	}
}

func TestRepay_NotifierFailureDoesNotUnwindRepayment(t *testing.T) {
	ctx := context.Background()
	clk := newClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memuow.NewStore()
	seedPool(store, tokenT, "1000000.00", 1000, 500)
	seedAccount(store, walletA, tokenT, "1000.00", clk.Now())

	notifier := &fakeNotifier{fail: true}
	uc := NewUsecase(store, DefaultPolicy(), WithClock(clk.Now), WithSettlementNotifier(notifier))

	if _, err := uc.Borrow(ctx, BorrowInput{Wallet: walletA, Token: tokenT, Amount: "500.00"}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	clk.AdvanceDays(30)
	if _, err := uc.Repay(ctx, walletA, tokenT, "504.11"); err != nil {
		t.Fatalf("Repay should succeed despite gateway failure: %v", err)
	}

	l, ok := store.Loan(loanIDOf(t, store))
	if !ok || l.Status != loan.StatusRepaid {
		t.Fatalf("loan should be repaid, got %+v (ok=%v)", l, ok)
	}
	items := store.Schedule(l.ID)
	if len(items) != 1 || items[0].SettlementRef != "" {
		t.Fatalf("ref should stay empty on gateway failure: %+v", items)
	}
}

func loanIDOf(t *testing.T, store *memuow.Store) string {
	t.Helper()
	ids := store.LoanIDs()
	if len(ids) != 1 {
		t.Fatalf("loans in store = %d, want 1", len(ids))
	}
	return ids[0]
}
