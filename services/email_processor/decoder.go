package email_processor

import (
	"bytes"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	er "github.com/kenji-jpg/bread-myship-worker/internal/errors"
)

// DecodeBody extracts the plain-text and HTML renditions from one raw MIME
// payload. Either part may be absent; a structurally broken payload surfaces
// as an error to the caller, it is not swallowed here.
func DecodeBody(raw []byte) (dto.EmailBody, error) {
	if len(raw) == 0 {
		return dto.EmailBody{}, er.ErrEmptyMessage
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return dto.EmailBody{}, errors.Wrap(err, "failed to read mime envelope")
	}

	return dto.EmailBody{
		Text: envelope.Text,
		HTML: envelope.HTML,
	}, nil
}
