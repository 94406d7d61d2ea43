package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// Pagination is the offset/limit window shared by the list endpoints.
type Pagination struct {
	Offset int
	Limit  int
}

func (p *Pagination) Bind(ctx echo.Context) {
	p.Limit = defaultPageLimit
	if v, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && v >= 0 {
		p.Offset = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		if v > maxPageLimit {
			v = maxPageLimit
		}
		p.Limit = v
	}
}

func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
