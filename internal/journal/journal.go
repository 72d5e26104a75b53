package journal

import (
	"encoding/json"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tradecore/internal/bus"
	"tradecore/internal/order"
)

var ErrNotOpen = errors.New("journal is not open")

// Config selects the journal backend.
type Config struct {
	Enable bool   `json:"enable"`
	DSN    string `json:"dsn"`
}

// OrderEventRow is one persisted order event. Kind discriminates the event
// variant; Payload holds the full event as JSON.
type OrderEventRow struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	EventID        string `gorm:"uniqueIndex;size:36"`
	Kind           string `gorm:"index;size:24"`
	TraderID       string `gorm:"size:64"`
	StrategyID     string `gorm:"index;size:64"`
	InstrumentID   string `gorm:"index;size:64"`
	ClientOrderID  string `gorm:"index;size:64"`
	VenueOrderID   string `gorm:"size:64"`
	TsEventNs      int64
	TsInitNs       int64
	Reconciliation bool
	Payload        string `gorm:"type:jsonb"`
}

// TableName fixes the table name regardless of gorm naming strategy.
func (OrderEventRow) TableName() string { return "order_events" }

// Journal persists every order event published on the bus.
type Journal struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the event table.
func Open(cfg Config) (*Journal, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	if err := db.AutoMigrate(&OrderEventRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal")
	}
	return &Journal{db: db}, nil
}

// Attach subscribes the journal to every strategy's order event topic.
func (j *Journal) Attach(b *bus.Bus) {
	b.Subscribe(bus.TopicOrderEvents+"*", func(msg any) {
		ev, ok := msg.(order.Event)
		if !ok {
			return
		}
		if err := j.Write(ev); err != nil {
			logs.Errorf("journal: write %s: %+v", ev.Kind(), err)
		}
	})
}

// Write persists one event.
func (j *Journal) Write(ev order.Event) error {
	if j == nil || j.db == nil {
		return ErrNotOpen
	}
	row, err := RowFromEvent(ev)
	if err != nil {
		return err
	}
	if err := j.db.Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert order event")
	}
	return nil
}

// EventsForOrder loads the persisted log of one order, oldest first.
func (j *Journal) EventsForOrder(clientOrderID string) ([]OrderEventRow, error) {
	if j == nil || j.db == nil {
		return nil, ErrNotOpen
	}
	var rows []OrderEventRow
	err := j.db.
		Where("client_order_id = ?", clientOrderID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load order events")
	}
	return rows, nil
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RowFromEvent flattens an event into its persisted row.
func RowFromEvent(ev order.Event) (OrderEventRow, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return OrderEventRow{}, errors.Wrap(err, "marshal order event")
	}
	base := ev.Base()
	return OrderEventRow{
		EventID:        base.EventID.String(),
		Kind:           ev.Kind().String(),
		TraderID:       string(base.TraderID),
		StrategyID:     string(base.StrategyID),
		InstrumentID:   base.InstrumentID.String(),
		ClientOrderID:  string(base.ClientOrderID),
		VenueOrderID:   string(base.VenueOrderID),
		TsEventNs:      base.TsEventNs,
		TsInitNs:       base.TsInitNs,
		Reconciliation: base.Reconciliation,
		Payload:        string(payload),
	}, nil
}
