package models

import (
	"strings"
	"time"
)

// Station represents a preparation lane items are routed to
type Station string

const (
	StationKitchen Station = "kitchen"
	StationBar     Station = "bar"
	StationService Station = "service"
)

// AllStations lists every station the queue tracks load for
var AllStations = []Station{StationKitchen, StationBar, StationService}

// Valid reports whether the station is one the queue knows about
func (s Station) Valid() bool {
	switch s {
	case StationKitchen, StationBar, StationService:
		return true
	}
	return false
}

// Course represents the meal-sequence category of an item
type Course string

const (
	CourseAppetizer Course = "appetizer"
	CourseMain      Course = "main"
	CourseDessert   Course = "dessert"
	CourseBeverage  Course = "beverage"
	CourseSide      Course = "side"
)

// CourseSequence is the canonical serving order. Position in this slice
// drives the course component of the priority score.
var CourseSequence = []Course{CourseAppetizer, CourseMain, CourseDessert, CourseBeverage, CourseSide}

// Position returns the canonical index of the course. Unknown or empty
// courses fall back to main.
func (c Course) Position() int {
	for i, course := range CourseSequence {
		if course == c {
			return i
		}
	}
	return CourseMain.Position()
}

// Valid reports whether the course is part of the canonical sequence
func (c Course) Valid() bool {
	for _, course := range CourseSequence {
		if course == c {
			return true
		}
	}
	return false
}

// OrderStatus represents the possible states of a kitchen display order
type OrderStatus string

const (
	StatusPending      OrderStatus = "pending"
	StatusAcknowledged OrderStatus = "acknowledged"
	StatusPreparing    OrderStatus = "preparing"
	StatusReady        OrderStatus = "ready"
	StatusServed       OrderStatus = "served"
	StatusCancelled    OrderStatus = "cancelled"
)

// Active reports whether an order in this status counts toward a
// station's active load
func (s OrderStatus) Active() bool {
	return s == StatusPreparing || s == StatusAcknowledged
}

// Terminal reports whether the order has left the kitchen's working set
func (s OrderStatus) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// CustomerType affects priority weighting
type CustomerType string

const (
	CustomerVIP     CustomerType = "vip"
	CustomerRegular CustomerType = "regular"
	CustomerNew     CustomerType = "new"
)

// Multiplier returns the priority multiplier for the customer tier.
// Unknown tiers are treated as regular.
func (t CustomerType) Multiplier() float64 {
	switch t {
	case CustomerVIP:
		return 1.5
	case CustomerNew:
		return 0.8
	default:
		return 1.0
	}
}

// urgencyKeywords are matched case-insensitively against item modifier text
var urgencyKeywords = []string{"allerg", "urgent", "asap", "rush"}

// OrderItem represents a single line item within a kitchen order
type OrderItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Station    Station `json:"station,omitempty"`
	Course     Course  `json:"course,omitempty"`
	Complexity int     `json:"complexity,omitempty"`
	PrepTime   int     `json:"prep_time,omitempty"`
	Modifiers  string  `json:"modifiers,omitempty"`
}

// EffectiveStation returns the item's station, defaulting to kitchen
func (i OrderItem) EffectiveStation() Station {
	if i.Station.Valid() {
		return i.Station
	}
	return StationKitchen
}

// EffectiveCourse returns the item's course, defaulting to main
func (i OrderItem) EffectiveCourse() Course {
	if i.Course.Valid() {
		return i.Course
	}
	return CourseMain
}

// EffectiveComplexity returns the item's complexity on the 1-5 scale,
// defaulting to 3 when unset
func (i OrderItem) EffectiveComplexity() float64 {
	if i.Complexity >= 1 && i.Complexity <= 5 {
		return float64(i.Complexity)
	}
	return 3
}

// EffectivePrepTime returns the estimated prep time in minutes,
// defaulting to 10 when unset
func (i OrderItem) EffectivePrepTime() int {
	if i.PrepTime > 0 {
		return i.PrepTime
	}
	return 10
}

// Urgent reports whether the item's modifier text carries an urgency
// keyword (allergy, urgent, asap, rush)
func (i OrderItem) Urgent() bool {
	if i.Modifiers == "" {
		return false
	}
	text := strings.ToLower(i.Modifiers)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// KDSOrder represents an order as tracked by the kitchen display
type KDSOrder struct {
	ID              string       `json:"id"`
	OrderNumber     string       `json:"order_number"`
	TableID         string       `json:"table_id"`
	Status          OrderStatus  `json:"status"`
	KitchenStatus   OrderStatus  `json:"kitchen_status,omitempty"`
	BarStatus       OrderStatus  `json:"bar_status,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	AcknowledgedAt  *time.Time   `json:"acknowledged_at,omitempty"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	Items           []OrderItem  `json:"items"`
	CustomerType    CustomerType `json:"customer_type,omitempty"`
	Priority        float64      `json:"priority"`
	AssignedStation Station      `json:"assigned_station,omitempty"`
	AssignedStaffID string       `json:"assigned_staff_id,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	Escalated       bool         `json:"escalated,omitempty"`
}

// WaitTime returns how long the order has been in the kitchen
func (o *KDSOrder) WaitTime(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

// CourseSequence returns the distinct courses present in the order,
// in canonical course order
func (o *KDSOrder) CourseSequence() []Course {
	present := make(map[Course]bool, len(o.Items))
	for _, item := range o.Items {
		present[item.EffectiveCourse()] = true
	}

	sequence := make([]Course, 0, len(present))
	for _, course := range CourseSequence {
		if present[course] {
			sequence = append(sequence, course)
		}
	}
	return sequence
}

// HasStation reports whether at least one item targets the given station
func (o *KDSOrder) HasStation(s Station) bool {
	for _, item := range o.Items {
		if item.EffectiveStation() == s {
			return true
		}
	}
	return false
}

// HasCourse reports whether at least one item belongs to the given course
func (o *KDSOrder) HasCourse(c Course) bool {
	for _, item := range o.Items {
		if item.EffectiveCourse() == c {
			return true
		}
	}
	return false
}

// HasUrgentModifiers reports whether any item carries an urgency keyword
func (o *KDSOrder) HasUrgentModifiers() bool {
	for _, item := range o.Items {
		if item.Urgent() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the order
func (o *KDSOrder) Clone() *KDSOrder {
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	if o.AcknowledgedAt != nil {
		t := *o.AcknowledgedAt
		clone.AcknowledgedAt = &t
	}
	if o.StartedAt != nil {
		t := *o.StartedAt
		clone.StartedAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// OrderUpdate carries a partial update for a tracked order. Nil fields
// are left unchanged; CreatedAt is immutable and has no update field.
type OrderUpdate struct {
	Status          *OrderStatus  `json:"status,omitempty"`
	KitchenStatus   *OrderStatus  `json:"kitchen_status,omitempty"`
	BarStatus       *OrderStatus  `json:"bar_status,omitempty"`
	AcknowledgedAt  *time.Time    `json:"acknowledged_at,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	Items           []OrderItem   `json:"items,omitempty"`
	CustomerType    *CustomerType `json:"customer_type,omitempty"`
	AssignedStation *Station      `json:"assigned_station,omitempty"`
	AssignedStaffID *string       `json:"assigned_staff_id,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
}

// Apply merges the update into the order
func (u OrderUpdate) Apply(o *KDSOrder) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.KitchenStatus != nil {
		o.KitchenStatus = *u.KitchenStatus
	}
	if u.BarStatus != nil {
		o.BarStatus = *u.BarStatus
	}
	if u.AcknowledgedAt != nil {
		t := *u.AcknowledgedAt
		o.AcknowledgedAt = &t
	}
	if u.StartedAt != nil {
		t := *u.StartedAt
		o.StartedAt = &t
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		o.CompletedAt = &t
	}
	if u.Items != nil {
		o.Items = make([]OrderItem, len(u.Items))
		copy(o.Items, u.Items)
	}
	if u.CustomerType != nil {
		o.CustomerType = *u.CustomerType
	}
	if u.AssignedStation != nil {
		o.AssignedStation = *u.AssignedStation
	}
	if u.AssignedStaffID != nil {
		o.AssignedStaffID = *u.AssignedStaffID
	}
	if u.Notes != nil {
		o.Notes = *u.Notes
	}
}
