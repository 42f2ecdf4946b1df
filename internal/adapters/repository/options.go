package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacity bounds the number of rosters kept. Once full, saving
// evicts the lowest-ranked roster.
func WithCapacity(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}
