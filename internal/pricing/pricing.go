// Package pricing computes booking costs, including tiered surge pricing
// once an event's remaining inventory drops to its surge threshold.
package pricing

import "github.com/eventhub/booking-platform/internal/models"

// surge bands cover at most this many tickets each
const bandSize = 5

// TotalCost returns the cost of buying quantity tickets at the event's
// current inventory level. Above the surge threshold every ticket costs the
// base price. At or below it, tickets are priced in bands walking down from
// the current pool: the first band holds remaining%5 tickets (5 when the
// remainder is 0) at base+1*surge, the next 5 at base+2*surge, and so on
// until the quantity is covered. A single booking can span several bands.
//
// Pure function: it never inspects or mutates anything beyond its arguments.
// Callers are responsible for verifying availability before committing.
func TotalCost(event *models.Event, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	if event.AvailableTickets > event.SurgeThreshold {
		return float64(quantity) * event.BasePrice
	}

	remaining := event.AvailableTickets
	left := quantity
	tier := 1
	total := 0.0

	for left > 0 {
		band := remaining % bandSize
		if band == 0 {
			band = bandSize
		}
		if band > left {
			band = left
		}
		total += float64(band) * (event.BasePrice + float64(tier)*event.SurgePrice)
		remaining -= band
		left -= band
		tier++
	}

	return total
}
