package voucher

type Status string

const (
	StatusActive      Status = "active"
	StatusUsed        Status = "used"
	StatusExpired     Status = "expired"
	StatusExchanged   Status = "exchanged"
	StatusTransferred Status = "transferred"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusExpired, StatusExchanged, StatusTransferred:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
