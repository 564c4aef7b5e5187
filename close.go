package vecrank

import "context"

// Close releases the store's memory reservation back to its resource
// controller. It is safe to call more than once. The store must not be
// queried after Close.
func (s *Store[T]) Close() error {
	if s == nil || s.engine.Released() {
		return nil
	}
	s.engine.Release()
	s.logger.LogClose(context.Background(), s.engine.FootprintBytes())
	return nil
}
