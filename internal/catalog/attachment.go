package catalog

// Attachment is a binary field (logo, product image) in one of two states:
// an existing server URL, or a local file path pending upload. A pending
// file switches the outgoing request to multipart; an untouched URL is
// simply not sent.
type Attachment struct {
	URL  string
	File string
}

// Pending reports whether a local file is waiting to be uploaded.
func (a Attachment) Pending() bool {
	return a.File != ""
}

// Display returns the value shown in a form field.
func (a Attachment) Display() string {
	if a.File != "" {
		return a.File
	}
	return a.URL
}

// applyAttachmentValue interprets a form value against the current
// attachment: unchanged keeps the URL, empty clears it, anything else is a
// local path staged for upload.
func applyAttachmentValue(current Attachment, value string) Attachment {
	switch value {
	case current.URL:
		return Attachment{URL: current.URL}
	case "":
		return Attachment{}
	default:
		return Attachment{File: value}
	}
}
