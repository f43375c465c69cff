// Package delivery defines the interface every transport front-end satisfies.
package delivery

import "context"

// Delivery is a serving surface started by the application container.
type Delivery interface {
	Serve(ctx context.Context) error
}
