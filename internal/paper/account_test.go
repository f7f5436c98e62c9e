package paper

import (
	"math"
	"testing"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/strategy"
)

func assertClose(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestAccount_BuyCommitsFullBalance(t *testing.T) {
	at := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	acct := NewAccount("OBTUSDT", 500)

	trade := acct.Apply(strategy.ActionBuy, 97.0, at)
	if trade == nil {
		t.Fatal("Apply(buy) returned nil trade")
	}
	if trade.Side != model.SideBuy {
		t.Errorf("Side = %v, want %v", trade.Side, model.SideBuy)
	}
	assertClose(t, trade.Qty, 500.0/97.0, "Qty")
	assertClose(t, trade.Qty*trade.Price, 500, "invested amount")
	assertClose(t, acct.Balance(), 0, "balance after buy")

	pos, ok := acct.Position()
	if !ok {
		t.Fatal("expected open position after buy")
	}
	assertClose(t, pos.EntryPrice, 97.0, "entry price")
	if !pos.OpenedAt.Equal(at) {
		t.Errorf("OpenedAt = %v, want %v", pos.OpenedAt, at)
	}
}

func TestAccount_SellRealizesProfit(t *testing.T) {
	at := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	acct := NewAccount("OBTUSDT", 500)

	buy := acct.Apply(strategy.ActionBuy, 97.0, at)
	if buy == nil {
		t.Fatal("Apply(buy) returned nil trade")
	}

	sell := acct.Apply(strategy.ActionSell, 103.0, at.Add(5*time.Minute))
	if sell == nil {
		t.Fatal("Apply(sell) returned nil trade")
	}
	if sell.Side != model.SideSell {
		t.Errorf("Side = %v, want %v", sell.Side, model.SideSell)
	}

	wantQty := 500.0 / 97.0
	assertClose(t, sell.Qty, wantQty, "sell qty")
	assertClose(t, sell.Amount, wantQty*103.0, "proceeds")
	assertClose(t, sell.Profit, (103.0-97.0)*wantQty, "profit")
	assertClose(t, acct.Balance(), wantQty*103.0, "balance after sell")

	if acct.InPosition() {
		t.Error("expected flat account after sell")
	}
	// Proceeds minus initial stake equals realized profit.
	assertClose(t, acct.Balance()-500, sell.Profit, "profit identity")
}

func TestAccount_SellAtLossConservesValue(t *testing.T) {
	at := time.Now().UTC()
	acct := NewAccount("PLUMEUSDT", 500)

	acct.Apply(strategy.ActionBuy, 100.0, at)
	sell := acct.Apply(strategy.ActionSell, 90.0, at.Add(time.Minute))
	if sell == nil {
		t.Fatal("Apply(sell) returned nil trade")
	}
	assertClose(t, sell.Profit, -50.0, "loss")
	assertClose(t, acct.Balance(), 450.0, "balance after losing trade")
}

func TestAccount_BuyWhileLongIsNoOp(t *testing.T) {
	at := time.Now().UTC()
	acct := NewAccount("OBTUSDT", 500)

	acct.Apply(strategy.ActionBuy, 100.0, at)
	if trade := acct.Apply(strategy.ActionBuy, 90.0, at.Add(time.Minute)); trade != nil {
		t.Errorf("second buy produced trade %+v, want nil", trade)
	}

	pos, ok := acct.Position()
	if !ok {
		t.Fatal("position lost after no-op buy")
	}
	assertClose(t, pos.EntryPrice, 100.0, "entry price unchanged")
}

func TestAccount_SellWhileFlatIsNoOp(t *testing.T) {
	acct := NewAccount("OBTUSDT", 500)
	if trade := acct.Apply(strategy.ActionSell, 100.0, time.Now().UTC()); trade != nil {
		t.Errorf("sell while flat produced trade %+v, want nil", trade)
	}
	assertClose(t, acct.Balance(), 500.0, "balance unchanged")
}

func TestAccount_NoneIsNoOp(t *testing.T) {
	acct := NewAccount("OBTUSDT", 500)
	if trade := acct.Apply(strategy.ActionNone, 100.0, time.Now().UTC()); trade != nil {
		t.Errorf("none action produced trade %+v, want nil", trade)
	}
}

func TestAccount_RejectsNonPositivePrice(t *testing.T) {
	acct := NewAccount("OBTUSDT", 500)
	if trade := acct.Apply(strategy.ActionBuy, 0, time.Now().UTC()); trade != nil {
		t.Errorf("buy at zero price produced trade %+v, want nil", trade)
	}
	if acct.InPosition() {
		t.Error("position opened at zero price")
	}
}

func TestAccount_ZeroBalanceCannotOpen(t *testing.T) {
	acct := NewAccount("OBTUSDT", 0)
	if trade := acct.Apply(strategy.ActionBuy, 100.0, time.Now().UTC()); trade != nil {
		t.Errorf("buy with zero balance produced trade %+v, want nil", trade)
	}
}
