package ports

// ChangeNotifier is the presentation-side refresh channel. Storage
// adapters publish a key after each successful write so that any attached
// view can refresh; the engine itself never depends on this interface.
// Implementations must not block the caller.
type ChangeNotifier interface {
	DataChanged(key string)
}
