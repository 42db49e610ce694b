package orders

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

const orderNumberPrefix = "PM"

var orderNumberRe = regexp.MustCompile(`^PM-\d{14}-\d{5}$`)

// NewOrderNumber builds a human-readable order number:
//
//	PM-<UTC yyyymmddHHMMSS>-<5 random digits>
//
// The random suffix keeps two orders created in the same second from
// colliding; the unique index on order_number catches the rest.
func NewOrderNumber(now time.Time) string {
	stamp := now.UTC().Format("20060102150405")
	suffix := rand.Intn(100000)
	return fmt.Sprintf("%s-%s-%05d", orderNumberPrefix, stamp, suffix)
}

// IsOrderNumber reports whether the value matches the generated format.
func IsOrderNumber(value string) bool {
	return orderNumberRe.MatchString(value)
}
