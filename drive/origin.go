package drive

// Origin identifies which channel a request arrived on. Uploads from the
// two channels live in separate namespaces: service uploads skip the
// file-name collision check and never appear in folder listings.
type Origin int

const (
	// OriginUser is the interactive channel.
	OriginUser Origin = iota

	// OriginService is the trusted-credential machine channel.
	OriginService
)

func (o Origin) String() string {
	switch o {
	case OriginService:
		return "service"
	default:
		return "user"
	}
}

func (o Origin) fromService() bool {
	return o == OriginService
}
