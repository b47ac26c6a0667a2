package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "temple_queue_length",
			Help: "Current number of active queue entries per temple",
		},
		[]string{"temple_id"},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temple_queue_operations_total",
			Help: "Total queue operations",
		},
		[]string{"operation", "temple_id", "status"},
	)

	expiredBookings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "temple_expired_bookings_total",
			Help: "Bookings expired by the background sweeper",
		},
	)

	crowdPeopleCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "temple_crowd_people_count",
			Help: "People detected per zone in the latest heatmap frame",
		},
		[]string{"zone_id"},
	)

	smsDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temple_sms_deliveries_total",
			Help: "Outbound SMS attempts",
		},
		[]string{"status"},
	)
)

func SetQueueLength(templeID string, length int) {
	queueLength.WithLabelValues(templeID).Set(float64(length))
}

func TrackQueueOperation(operation, templeID, status string) {
	queueOperations.WithLabelValues(operation, templeID, status).Inc()
}

func TrackExpiredBookings(count int) {
	expiredBookings.Add(float64(count))
}

func SetZonePeopleCount(zoneID string, count int) {
	crowdPeopleCount.WithLabelValues(zoneID).Set(float64(count))
}

func TrackSMSDelivery(status string) {
	smsDeliveries.WithLabelValues(status).Inc()
}
