package registry

// EventType identifies an audit trail entry.
type EventType string

const (
	EventServerRegistered EventType = "ServerRegistered"
	EventScanUploaded     EventType = "ScanUploaded"
	EventServerApproved   EventType = "ServerApproved"
	EventServerDenied     EventType = "ServerDenied"
	EventServerSuspended  EventType = "ServerSuspended"
)

func (e EventType) String() string {
	return string(e)
}
