package models

const (
	// TableCount количество столов в каждом сгенерированном зале
	TableCount = 12

	// MinTablesPerCapacity / MaxTablesPerCapacity границы количества столов
	// каждой вместимости в зале
	MinTablesPerCapacity = 4
	MaxTablesPerCapacity = 8

	// CapacitySmall / CapacityLarge поддерживаемые размеры компаний
	CapacitySmall = 4
	CapacityLarge = 6

	// ServiceDurationMinutes длительность одного бронирования
	ServiceDurationMinutes = 90

	// MaxBookingsPerTable максимум существующих бронирований на стол
	MaxBookingsPerTable = 3

	// DefaultSessionTTL время жизни сессии эксперимента в секундах
	DefaultSessionTTL = 2 * 60 * 60

	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 128
)

// Capacities lists the supported party sizes in ascending order.
var Capacities = []int{CapacitySmall, CapacityLarge}

// TimeSlots is the fixed grid of bookable start times: nine slots spaced
// 30 minutes apart from 17:00 to 21:00 inclusive.
var TimeSlots = []string{
	"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00",
}
