package handler

import (
	"errors"
	"net/http"
	"reflect"

	"storefront/internal/apierror"
	"storefront/internal/middleware"
	"storefront/internal/permission"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID rejects malformed path ids before anything touches the database.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the service-layer identity from the validated JWT claims
// and the request correlation id.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{RequestID: c.GetString(middleware.RequestIDKey)}
	claims := middleware.GetClaims(c)
	if claims == nil {
		actor.Type = "SYSTEM"
		return actor
	}
	if id, err := uuid.Parse(claims.ActorID); err == nil {
		actor.ID = &id
	}
	actor.Type = claims.ActorType
	actor.Permissions = permission.FromStrings(claims.Permissions)
	return actor
}

// writeError maps service-layer errors onto HTTP statuses and the error
// envelope. Anything unrecognized becomes an opaque 500 via c.Error so the
// middleware logs it with full context.
func writeError(c *gin.Context, err error) {
	var (
		business     *service.BusinessError
		nf           *service.NotFoundError
		productsNF   *service.ProductsNotFoundError
		insufficient *service.InsufficientStockError
	)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, apierror.New("Unauthorized"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.New("Forbidden"))
	case errors.As(err, &productsNF):
		c.JSON(http.StatusNotFound, apierror.NewDetailed(productsNF.Detail()))
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, apierror.NewDetailed(insufficient.Detail()))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Error()))
	case errors.As(err, &business):
		c.JSON(http.StatusBadRequest, apierror.New(business.Msg))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			return def
		}
	}
	return n
}
