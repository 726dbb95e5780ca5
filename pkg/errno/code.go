package errno

// code=0 request succeeded
// code=4xx client error
// code=5xx server error
// code=2xxxx business error codes

type Errno struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}

	// transcription business codes
	ErrMediaNotFound         = &Errno{Code: 20101, Message: "Media item not found"}
	ErrMediaUUIDRequired     = &Errno{Code: 20102, Message: "Media UUID is required"}
	ErrJobAlreadyActive      = &Errno{Code: 20103, Message: "A transcription job is already active for this media"}
	ErrQueueFull             = &Errno{Code: 20104, Message: "Job queue is full"}
	ErrOwnerIDRequired       = &Errno{Code: 20105, Message: "Owner ID is required"}
	ErrFileNameRequired      = &Errno{Code: 20106, Message: "File name is required"}
	ErrStorageRefConflict    = &Errno{Code: 20107, Message: "Local path and remote key are mutually exclusive"}
	ErrMediaNotResubmittable = &Errno{Code: 20108, Message: "Media is not in a state that accepts a new job"}
)
