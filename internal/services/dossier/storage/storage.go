// Package storage loads and saves dossiers through pluggable codecs.
//
// Every codec honours the same contract: a dossier loaded from the bytes a
// codec saved is structurally equal to the saved one, and saving unchanged
// data twice yields identical bytes.
package storage

import (
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage/wire"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage/yamlfile"
)

// Codec converts dossiers to and from bytes.
type Codec interface {
	Name() string
	Encode(w io.Writer, d *dossier.Dossier) error
	Decode(r io.Reader) (*dossier.Dossier, error)
}

var (
	// ErrUnknownFormat indicates a path whose extension maps to no codec.
	ErrUnknownFormat = apperrors.New(apperrors.CodeFormatUnknown, "unknown dossier file format")
	// ErrMalformed indicates input a codec could not turn into a dossier.
	ErrMalformed = apperrors.New(apperrors.CodeDecodeMalformed, "malformed dossier input")
	// ErrWrite indicates a failure writing encoded bytes.
	ErrWrite = apperrors.New(apperrors.CodeWriteFailed, "write dossier failed")
	// ErrRead indicates a failure reading input.
	ErrRead = apperrors.New(apperrors.CodeReadFailed, "read dossier failed")
)

// CodecForPath picks a codec from the file extension: .yaml and .yml select
// YAML, .dossier selects the binary format.
func CodecForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlfile.Codec{}, nil
	case ".dossier":
		return wire.Codec{}, nil
	default:
		return nil, apperrors.Detail(ErrUnknownFormat, map[string]string{"path": path})
	}
}
