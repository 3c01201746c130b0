package event

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	panicHandler PanicHandler
	errorHandler func(event any, err error)
}

func defaultBusConfig() busConfig {
	return busConfig{}
}

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// WithErrorHandler sets the function called when a handler returns an error.
func WithErrorHandler(h func(event any, err error)) BusOption {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter restricts delivery to events accepted by fn.
func WithFilter(fn FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = fn
	}
}

// Once cancels the subscription after its first successful delivery.
func Once() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}
