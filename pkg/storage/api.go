package storage

// ApiStore defines the operations the HTTP service needs from the data layer.
type ApiStore interface {
	PreferencesStore
	ActivityReader
}
