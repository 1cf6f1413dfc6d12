package models

// Kind selects the ledger a provider and its bookings belong to.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindLabTest     Kind = "lab_test"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAppointment || k == KindLabTest
}

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses that hold a slot.
var ActiveStatuses = []string{StatusScheduled, StatusConfirmed}

const (
	RolePatient  = "patient"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

const (
	ReasonAbsent              = "absent"
	ReasonCancelledByProvider = "cancelled by provider"
	ReasonCancelledByPatient  = "cancelled by patient"
	ReasonCancelledByAdmin    = "cancelled by admin"
)

const (
	// DateLayout is the persisted date format.
	DateLayout = "2006-01-02"
	// TimeLayout is the persisted time-of-day format.
	TimeLayout = "15:04"
)

const (
	// DefaultCancellationWindowHours отделяет поздние отмены пациентом
	DefaultCancellationWindowHours = 24

	// DefaultMaxAdvanceDays как далеко вперёд можно бронировать
	DefaultMaxAdvanceDays = 90

	// DefaultSweepIntervalSeconds период фонового обхода неявок
	DefaultSweepIntervalSeconds = 5 * 60

	// DefaultCreateRateWindow окно ограничения попыток в секундах
	DefaultCreateRateWindow = 60
)
