package metrics

// Config carries the constant labels applied to every metric.
type Config struct {
	ServiceName string
	Environment string
}
