package decoration

import (
	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// ErrStaleDecorator indicates a decorator from a closed or foreign session.
var ErrStaleDecorator = apperrors.New(apperrors.CodeDecoratorStale, "decorator is not part of the current session")

func staleError(id hierarchy.NodeID) error {
	return apperrors.Detail(ErrStaleDecorator, map[string]string{"node_id": string(id)})
}
