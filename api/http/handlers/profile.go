package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/resumebot/api/http/presenter"
	"github.com/artem13815/resumebot/pkg/profile"
)

const (
	msgMemberNotFound = "Member not found."
	msgProfileFailed  = "An error occurred while fetching the member profile."
)

// ProfileHandler serves the member profile aggregate to the front end.
type ProfileHandler struct {
	svc profile.UseCase
	log *slog.Logger
}

func NewProfileHandler(svc profile.UseCase, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{svc: svc, log: logger}
}

// Get возвращает профиль участника: опыт работы с навыками и общий список навыков.
// @Summary     Профиль участника
// @Tags        Профиль
// @Produce     json
// @Param       memberId path string true "ID участника"
// @Success     200 {object} profile.Profile
// @Failure     404 {object} presenter.ErrorResponse
// @Failure     500 {object} presenter.ErrorResponse
// @Router      /member/{memberId} [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, err := h.svc.GetProfile(c.UserContext(), c.Params("memberId"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, msgMemberNotFound)
		}
		h.log.Error("get member profile", "member_id", c.Params("memberId"), "err", err)
		return presenter.Error(c, http.StatusInternalServerError, msgProfileFailed)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
