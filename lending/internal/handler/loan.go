package handler

import (
	"net/http"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return id, nil
}

// Checkout godoc
// @Summary  Check a book out to a student
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    X-User-Id    header  string                 true  "issuer id"
// @Param    X-User-Role  header  string                 true  "issuer role"
// @Param    request      body    model.CheckoutRequest  true  "loan"
// @Success  201  {object}  model.LoanDetails
// @Failure  400,404,409  {object}  echo.HTTPError
// @Router   /loans [post]
func (h *Handler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	var req model.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.IssuerID, _ = auth.UserID(ctx)
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.loanSvc.Checkout(ctx, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

// ListOverdue godoc
// @Summary  Active loans past their due date
// @Tags     loans
// @Produce  json
// @Success  200  {array}  model.LoanDetails
// @Router   /loans/overdue [get]
func (h *Handler) ListOverdue(c echo.Context) error {
	loans, err := h.loanSvc.ListOverdue(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan godoc
// @Summary  Loan with student, book and issuer
// @Tags     loans
// @Produce  json
// @Param    loanId  path  string  true  "loan id"
// @Success  200  {object}  model.LoanDetails
// @Failure  404  {object}  echo.HTTPError
// @Router   /loans/{loanId} [get]
func (h *Handler) GetLoan(c echo.Context) error {
	id, err := uuidParam(c, "loanId")
	if err != nil {
		return err
	}
	loan, err := h.loanSvc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// UpdateLoan godoc
// @Summary  Change the due date
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    loanId   path  string                   true  "loan id"
// @Param    request  body  model.UpdateLoanRequest  true  "new due date"
// @Success  200  {object}  model.LoanDetails
// @Failure  404  {object}  echo.HTTPError
// @Router   /loans/{loanId} [patch]
func (h *Handler) UpdateLoan(c echo.Context) error {
	id, err := uuidParam(c, "loanId")
	if err != nil {
		return err
	}
	var req model.UpdateLoanRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan, err := h.loanSvc.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// DeleteLoan godoc
// @Summary  Delete a loan, restoring the copy if it was still out
// @Tags     loans
// @Param    loanId  path  string  true  "loan id"
// @Success  200
// @Failure  404  {object}  echo.HTTPError
// @Router   /loans/{loanId} [delete]
func (h *Handler) DeleteLoan(c echo.Context) error {
	id, err := uuidParam(c, "loanId")
	if err != nil {
		return err
	}
	if err = h.loanSvc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "loan deleted"})
}

// ReturnLoan godoc
// @Summary  Return a book
// @Tags     loans
// @Produce  json
// @Param    loanId  path  string  true  "loan id"
// @Success  200  {object}  model.LoanDetails
// @Failure  404,409  {object}  echo.HTTPError
// @Router   /loans/{loanId}/return [post]
func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := uuidParam(c, "loanId")
	if err != nil {
		return err
	}
	loan, err := h.loanSvc.Return(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// ListStudentLoans godoc
// @Summary  Active loans of a student
// @Tags     loans
// @Produce  json
// @Param    studentId  path  string  true  "student id"
// @Success  200  {array}  model.LoanDetails
// @Router   /students/{studentId}/loans [get]
func (h *Handler) ListStudentLoans(c echo.Context) error {
	id, err := uuidParam(c, "studentId")
	if err != nil {
		return err
	}
	loans, err := h.loanSvc.ListActiveForStudent(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}
