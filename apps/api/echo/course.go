package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
)

type courseApi struct {
	svc           course.Service
	assignmentSvc assignment.Service
}

func registerCourseAPI(g *echo.Group, svc course.Service, assignmentSvc assignment.Service) {
	api := courseApi{svc: svc, assignmentSvc: assignmentSvc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PATCH("/:id", api.update)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/assignments", api.queryAssignments)
}

// pathID parses the `:id` path param.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	c, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	deleted, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: deleted})
}

func (api *courseApi) queryAssignments(ctx echo.Context) error {
	if _, err := pathID(ctx); err != nil {
		return err
	}
	assignments, err := api.assignmentSvc.QueryByCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}
