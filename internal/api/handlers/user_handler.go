package handlers

import (
	"foodies-api/domain"
	"foodies-api/internal/api/presenters"
	"foodies-api/internal/middleware"
	"foodies-api/pkg/pagination"
	"foodies-api/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
		GetProfile(c *fiber.Ctx) error
		UpdateAvatar(c *fiber.Ctx) error
		GetMyFollowers(c *fiber.Ctx) error
		GetUserFollowers(c *fiber.Ctx) error
		GetFollowings(c *fiber.Ctx) error
		Follow(c *fiber.Ctx) error
		Unfollow(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	res, err := h.userService.Register(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedRegister, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.userService.Login(c.UserContext(), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *userHandler) Logout(c *fiber.Ctx) error {
	if err := h.userService.Logout(c.UserContext(), middleware.UserID(c)); err != nil {
		return presenters.ServiceError(c, domain.MessageFailedLogout, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	res, err := h.userService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) GetProfile(c *fiber.Ctx) error {
	res, err := h.userService.GetProfile(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) UpdateAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateAvatar, domain.ErrAvatarRequired)
	}

	res, err := h.userService.UpdateAvatar(c.UserContext(), middleware.UserID(c), domain.UpdateAvatarRequest{Avatar: file})
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUpdateAvatar, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateAvatar)
}

func (h *userHandler) GetMyFollowers(c *fiber.Ctx) error {
	return h.followers(c, middleware.UserID(c))
}

func (h *userHandler) GetUserFollowers(c *fiber.Ctx) error {
	return h.followers(c, c.Params("id"))
}

func (h *userHandler) followers(c *fiber.Ctx, userID string) error {
	res, err := h.userService.GetFollowers(c.UserContext(), userID, pageParams(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetFollowers, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFollowers)
}

func (h *userHandler) GetFollowings(c *fiber.Ctx) error {
	res, err := h.userService.GetFollowings(c.UserContext(), middleware.UserID(c), pageParams(c))
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedGetFollowings, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFollowings)
}

func (h *userHandler) Follow(c *fiber.Ctx) error {
	req := new(domain.IDRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedFollow, err)
	}

	res, err := h.userService.Follow(c.UserContext(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedFollow, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessFollow)
}

func (h *userHandler) Unfollow(c *fiber.Ctx) error {
	req := new(domain.IDRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUnfollow, err)
	}

	res, err := h.userService.Unfollow(c.UserContext(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.ServiceError(c, domain.MessageFailedUnfollow, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUnfollow)
}

func pageParams(c *fiber.Ctx) pagination.Params {
	return pagination.Parse(c.Query("page"), c.Query("limit"))
}
