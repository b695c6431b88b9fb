package server

import (
	"io"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type profilePage struct {
	Flash  string            `json:"flash,omitempty"`
	User   *models.User      `json:"user"`
	Tweets []models.FeedItem `json:"tweets"`
}

func (s *Server) profilePage(c *fiber.Ctx, user *models.User) error {
	tweets, err := s.feed.BuildAuthorFeed(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profilePage{
		Flash:  popFlash(c),
		User:   user,
		Tweets: tweets,
	})
}

// GetProfile handles GET /profile/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.identity.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return s.profilePage(c, user)
}

// UpdateProfile handles POST /profile/:username. Only the profile owner may edit it.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	user, err := s.identity.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	if user.ID != userID {
		return respondError(c, models.NewForbiddenError("You can only edit your own profile"))
	}

	var req struct {
		Bio string `json:"bio" form:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return redirectWithFlash(c, profilePath(user), "Invalid request body")
	}

	if _, err := s.identity.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: userID,
		Bio:    &req.Bio,
	}); err != nil {
		if isUserFacing(err) {
			return redirectWithFlash(c, profilePath(user), userMessage(err))
		}
		return respondError(c, err)
	}

	return redirectWithFlash(c, profilePath(user), "Profile updated.")
}

func profilePath(user *models.User) string {
	return "/profile/" + user.Username
}

// Home handles GET /home, the signed-in user's own profile.
func (s *Server) Home(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	user, err := s.identity.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return s.profilePage(c, user)
}

// UpdateHome handles the multipart POST /home form carrying an optional bio and avatar.
func (s *Server) UpdateHome(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	ctx := c.UserContext()

	form, err := c.MultipartForm()
	if err != nil {
		return redirectWithFlash(c, "/home", "Invalid form submission")
	}

	current, err := s.identity.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	in := service.UpdateProfileInput{UserID: userID}
	if values, ok := form.Value["bio"]; ok && len(values) > 0 {
		in.Bio = &values[0]
	}

	if files := form.File["avatar"]; len(files) > 0 && files[0].Filename != "" {
		fh := files[0]
		if !service.AllowedAvatarFile(fh.Filename) {
			return redirectWithFlash(c, "/home", "Avatar must be a png, jpg, jpeg or gif file")
		}

		f, err := fh.Open()
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}

		stored, err := s.avatars.Store(ctx, fh.Filename, content)
		if err != nil {
			if isUserFacing(err) {
				return redirectWithFlash(c, "/home", userMessage(err))
			}
			return respondError(c, err)
		}
		in.Avatar = &stored
	}

	if in.Bio == nil && in.Avatar == nil {
		return redirectWithFlash(c, "/home", "Nothing to update")
	}

	if _, err := s.identity.UpdateProfile(ctx, in); err != nil {
		if in.Avatar != nil {
			s.avatars.Remove(ctx, *in.Avatar)
		}
		if isUserFacing(err) {
			return redirectWithFlash(c, "/home", userMessage(err))
		}
		return respondError(c, err)
	}

	if in.Avatar != nil && current.Avatar != nil && *current.Avatar != *in.Avatar {
		s.avatars.Remove(ctx, *current.Avatar)
	}

	middleware.Logger.InfoContext(ctx, "profile updated",
		"bio_changed", in.Bio != nil, "avatar_changed", in.Avatar != nil)
	return redirectWithFlash(c, "/home", "Profile updated.")
}
