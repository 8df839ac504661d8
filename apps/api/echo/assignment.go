package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masomo/planner/core/assignment"
)

type (
	assignmentApi struct {
		svc assignment.Service
	}

	toggleRequest struct {
		Completed *bool `json:"completed"`
	}

	deleteResponse struct {
		Deleted bool `json:"deleted"`
	}
)

func registerAssignmentAPI(g *echo.Group, svc assignment.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments")
	ag.GET("", api.query)
	ag.POST("", api.create)

	// detail endpoints
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/toggle", api.toggle)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	assignments, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	a, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	deleted, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: deleted})
}

func (api *assignmentApi) toggle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data toggleRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to toggleRequest")
	}
	if data.Completed == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "completed is required")
	}
	a, err := api.svc.ToggleComplete(ctx.Request().Context(), id, *data.Completed)
	if err != nil {
		return errors.Wrap(err, "toggling assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}
