package service

import (
	"context"

	"go-leather-stock/internal/model"

	"go.uber.org/zap"
)

type StockAction string

const (
	ActionCreated     StockAction = "record_created"
	ActionAdjusted    StockAction = "adjusted"
	ActionCounted     StockAction = "counted"
	ActionTransferred StockAction = "transferred"
	ActionReceived    StockAction = "received"
	ActionThresholds  StockAction = "thresholds_updated"
	ActionDeactivated StockAction = "deactivated"
	ActionDeleted     StockAction = "deleted"
)

// StockChange describes one committed change to an inventory record.
// Transaction is nil when no quantity moved.
type StockChange struct {
	Action      StockAction
	Record      model.InventoryRecord
	Transaction *model.StockTransaction
	Actor       string
}

// StockObserver is told about committed stock changes. Errors are logged
// and never undo the change.
type StockObserver interface {
	StockChanged(ctx context.Context, change StockChange) error
}

// StockObserverFunc adapts a function to StockObserver.
type StockObserverFunc func(ctx context.Context, change StockChange) error

func (f StockObserverFunc) StockChanged(ctx context.Context, change StockChange) error {
	return f(ctx, change)
}

// Observers is the set of StockObservers shared by the services that move
// stock. Register observers before serving requests.
type Observers struct {
	observers []StockObserver
	log       *zap.Logger
}

func NewObservers(log *zap.Logger, observers ...StockObserver) *Observers {
	return &Observers{observers: observers, log: log.Named("observers")}
}

func (o *Observers) Add(observer StockObserver) {
	o.observers = append(o.observers, observer)
}

func (o *Observers) notify(ctx context.Context, changes ...StockChange) {
	if o == nil {
		return
	}
	for _, change := range changes {
		for _, observer := range o.observers {
			o.call(ctx, observer, change)
		}
	}
}

func (o *Observers) call(ctx context.Context, observer StockObserver, change StockChange) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("stock observer panicked",
				zap.Any("panic", r),
				zap.String("action", string(change.Action)),
				zap.Stringer("record_id", change.Record.ID))
		}
	}()
	if err := observer.StockChanged(ctx, change); err != nil {
		o.log.Warn("stock observer failed",
			zap.Error(err),
			zap.String("action", string(change.Action)),
			zap.Stringer("record_id", change.Record.ID))
	}
}
