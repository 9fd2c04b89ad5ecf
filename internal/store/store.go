package store

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"expeditor/internal/models"
)

// OrderRecord is the persisted snapshot of a kitchen display order.
// The queue engine itself never touches the database; this store is the
// source of truth the registry is rebuilt from on restart.
type OrderRecord struct {
	gorm.Model
	OrderID         string `gorm:"unique_index"`
	OrderNumber     string
	TableID         string
	Status          string
	KitchenStatus   string
	BarStatus       string
	CustomerType    string
	ReceivedAt      time.Time
	AcknowledgedAt  *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	Priority        float64
	AssignedStation string
	AssignedStaffID string
	Notes           string
	Escalated       bool
	Items           []ItemRecord `gorm:"foreignkey:OrderRecordID"`
}

// ItemRecord is the persisted form of an order line item
type ItemRecord struct {
	gorm.Model
	OrderRecordID uint
	ItemID        string
	Name          string
	Quantity      int
	UnitPrice     float64
	Station       string
	Course        string
	Complexity    int
	PrepTime      int
	Modifiers     string
}

// Store persists order snapshots in SQLite
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the snapshot database at the given path
func Open(path string) (*Store, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if err := db.AutoMigrate(&OrderRecord{}, &ItemRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveOrder upserts the snapshot of an order
func (s *Store) SaveOrder(order *models.KDSOrder) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// Hard-delete any previous snapshot; soft-deleted rows would trip
	// the unique index on order_id.
	var existing OrderRecord
	err := tx.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		if err := tx.Unscoped().Where("order_record_id = ?", existing.ID).Delete(&ItemRecord{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear items for order %s: %w", order.ID, err)
		}
		if err := tx.Unscoped().Delete(&existing).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear snapshot for order %s: %w", order.ID, err)
		}
	} else if !gorm.IsRecordNotFoundError(err) {
		tx.Rollback()
		return err
	}

	record := toRecord(order)
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return tx.Commit().Error
}

// DeleteOrder removes an order's snapshot
func (s *Store) DeleteOrder(id string) error {
	var record OrderRecord
	err := s.db.Where("order_id = ?", id).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Where("order_record_id = ?", record.ID).Delete(&ItemRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete items for order %s: %w", id, err)
	}
	if err := s.db.Unscoped().Delete(&record).Error; err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

// LoadActive returns all non-terminal orders for rehydrating the queue
// after a restart
func (s *Store) LoadActive() ([]*models.KDSOrder, error) {
	var records []OrderRecord
	err := s.db.
		Where("status NOT IN (?)", []string{string(models.StatusServed), string(models.StatusCancelled)}).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active orders: %w", err)
	}

	orders := make([]*models.KDSOrder, 0, len(records))
	for i := range records {
		if err := s.db.Where("order_record_id = ?", records[i].ID).Find(&records[i].Items).Error; err != nil {
			return nil, fmt.Errorf("failed to load items for order %s: %w", records[i].OrderID, err)
		}
		orders = append(orders, fromRecord(&records[i]))
	}
	return orders, nil
}

func toRecord(order *models.KDSOrder) OrderRecord {
	record := OrderRecord{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		TableID:         order.TableID,
		Status:          string(order.Status),
		KitchenStatus:   string(order.KitchenStatus),
		BarStatus:       string(order.BarStatus),
		CustomerType:    string(order.CustomerType),
		ReceivedAt:      order.CreatedAt,
		AcknowledgedAt:  order.AcknowledgedAt,
		StartedAt:       order.StartedAt,
		CompletedAt:     order.CompletedAt,
		Priority:        order.Priority,
		AssignedStation: string(order.AssignedStation),
		AssignedStaffID: order.AssignedStaffID,
		Notes:           order.Notes,
		Escalated:       order.Escalated,
	}
	for _, item := range order.Items {
		record.Items = append(record.Items, ItemRecord{
			ItemID:     item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Station:    string(item.Station),
			Course:     string(item.Course),
			Complexity: item.Complexity,
			PrepTime:   item.PrepTime,
			Modifiers:  item.Modifiers,
		})
	}
	return record
}

func fromRecord(record *OrderRecord) *models.KDSOrder {
	order := &models.KDSOrder{
		ID:              record.OrderID,
		OrderNumber:     record.OrderNumber,
		TableID:         record.TableID,
		Status:          models.OrderStatus(record.Status),
		KitchenStatus:   models.OrderStatus(record.KitchenStatus),
		BarStatus:       models.OrderStatus(record.BarStatus),
		CustomerType:    models.CustomerType(record.CustomerType),
		CreatedAt:       record.ReceivedAt,
		AcknowledgedAt:  record.AcknowledgedAt,
		StartedAt:       record.StartedAt,
		CompletedAt:     record.CompletedAt,
		Priority:        record.Priority,
		AssignedStation: models.Station(record.AssignedStation),
		AssignedStaffID: record.AssignedStaffID,
		Notes:           record.Notes,
		Escalated:       record.Escalated,
	}
	for _, item := range record.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:         item.ItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Station:    models.Station(item.Station),
			Course:     models.Course(item.Course),
			Complexity: item.Complexity,
			PrepTime:   item.PrepTime,
			Modifiers:  item.Modifiers,
		})
	}
	return order
}
