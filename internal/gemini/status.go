package gemini

import "strconv"

// Status is a two-digit Gemini response status code
type Status int

const (
	StatusSuccess             Status = 20
	StatusSlowDown            Status = 44
	StatusServerFailure       Status = 50
	StatusNotFound            Status = 51
	StatusBadRequest          Status = 59
	StatusCertificateRequired Status = 60
)

// Default meta strings for non-success responses
const (
	MetaBadRequest          = "Bad request"
	MetaNotFound            = "Not found"
	MetaServerFailure       = "Server failure"
	MetaCertificateRequired = "Client certificate required"
)

func (s Status) String() string {
	return strconv.Itoa(int(s))
}

// Class returns the first digit of the status, e.g. 2 for success
func (s Status) Class() int {
	return int(s) / 10
}
