package templates

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors classified by ServiceError.
const (
	TextCodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
	TextCodeLanguageNotFound   = "TEMPLATE_LANGUAGE_NOT_FOUND"
	TextCodeGroupNotFound      = "TEMPLATE_GROUP_NOT_FOUND"
	TextCodeRenderingFailed    = "TEMPLATE_RENDERING_FAILED"
	TextCodeBuildFailed        = "TEMPLATE_BUILD_FAILED"
	TextCodeGroupIntegrity     = "TEMPLATE_GROUP_INTEGRITY"
	TextCodeDuplicateLocale    = "TEMPLATE_DUPLICATE_LOCALE"
	TextCodeBuilderMisuse      = "TEMPLATE_BUILDER_MISUSE"
	TextCodeInvalidContent     = "TEMPLATE_INVALID_CONTENT"
	TextCodeUnclassifiedFailed = "TEMPLATE_FAILED"
)

// ServiceError classifies repository errors into go-errors categories so
// hosts can map them onto transport status codes. Errors that are already
// go-errors values are returned untouched; nil stays nil.
func ServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped
	}

	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "template not found").
			WithTextCode(TextCodeTemplateNotFound)
	case errors.Is(err, ErrLanguageNotFound):
		out := goerrors.Wrap(err, goerrors.CategoryNotFound, "template language not found").
			WithTextCode(TextCodeLanguageNotFound)
		var lnf *LanguageNotFoundError
		if errors.As(err, &lnf) {
			out = out.WithMetadata(map[string]any{
				"template": lnf.Template,
				"locales":  lnf.Locales,
			})
		}
		return out
	case errors.Is(err, ErrGroupNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "template group not found").
			WithTextCode(TextCodeGroupNotFound)
	case errors.Is(err, ErrRenderingFailed):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "template rendering failed").
			WithTextCode(TextCodeRenderingFailed)
	case errors.Is(err, ErrGroupIntegrity):
		out := goerrors.Wrap(err, goerrors.CategoryValidation, "template groups reference missing templates").
			WithTextCode(TextCodeGroupIntegrity)
		var gie *GroupIntegrityError
		if errors.As(err, &gie) {
			out = out.WithMetadata(map[string]any{"violations": gie.Violations})
		}
		return out
	case errors.Is(err, ErrDuplicateLocaleMapping):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "template maps a locale twice").
			WithTextCode(TextCodeDuplicateLocale)
	case errors.Is(err, ErrTemplateBuilding):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "template build failed").
			WithTextCode(TextCodeBuildFailed)
	case errors.Is(err, ErrInvalidContent):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "template content is invalid").
			WithTextCode(TextCodeInvalidContent)
	case errors.Is(err, ErrBuilderConsumed), errors.Is(err, ErrCompilerRequired):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "template builder misuse").
			WithTextCode(TextCodeBuilderMisuse)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "template operation failed").
			WithTextCode(TextCodeUnclassifiedFailed)
	}
}
