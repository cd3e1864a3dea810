package pagination

import "fmt"

// Validate checks 1 <= Limit <= MaxLimit and Offset >= 0.
func (p Params) Validate(config Config) error {
	if p.Limit < 1 || p.Limit > config.MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParams, config.MaxLimit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidParams)
	}
	return nil
}
