package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/internal/pkg/database"
	"github.com/vivaarte/vivaarte/internal/pkg/env"
	"github.com/vivaarte/vivaarte/internal/pkg/mail"
	"github.com/vivaarte/vivaarte/internal/pkg/session"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		var user models.User
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		result := database.GetDB().Where("email = ?", c.FormValue("email")).First(&user)
		if result.Error != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.IsActive() {
			fm["message"] = "Please activate your account first"

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(AUTH_KEY, true)
		sess.Set(USER_ID, user.ID)
		sess.Set(USER_NAME, user.Name)
		sess.Set(USER_IS_ADMIN, user.IsAdmin())

		err = sess.Save()
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		database.GetDB().Model(&user).Update("last_login_at", time.Now())

		fm = fiber.Map{
			"type":    "success",
			"message": "Welcome back!",
		}

		return flash.WithSuccess(c, fm).Redirect("/")
	}

	return c.Render("login", fiber.Map{
		"Title":     "Login",
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "See you soon!",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		user, err := models.CreateUser(
			c.FormValue("username"),
			c.FormValue("email"),
			c.FormValue("password"),
		)
		if err != nil {
			fm["message"] = fmt.Sprintf("registration failed: %s", err)

			return flash.WithError(c, fm).Redirect("/register")
		}

		if err := user.GenerateActivationToken(); err != nil {
			fm["message"] = "could not create activation token"

			return flash.WithError(c, fm).Redirect("/register")
		}

		result := database.GetDB().Create(user)
		if result.Error != nil {
			fm["message"] = "registration failed: email may already be in use"

			return flash.WithError(c, fm).Redirect("/register")
		}

		activationLink := fmt.Sprintf("%s/activate?token=%s",
			env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), user.ActivationToken)
		body := fmt.Sprintf("<p>Welcome to VivaArte, %s!</p><p><a href=\"%s\">Activate your account</a></p>",
			user.Name, activationLink)
		if err := mail.SendMail(user.Email, "Activate your VivaArte account", body); err != nil {
			// Account exists; activation can be re-sent later.
			fm = fiber.Map{
				"type":    "warning",
				"message": "Account created, but the activation email could not be sent",
			}
			return flash.WithWarn(c, fm).Redirect("/login")
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Account created. Please check your inbox to activate it.",
		}

		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return c.Render("register", fiber.Map{
		"Title":     "Register",
		"CSRFToken": c.Locals("csrf"),
		"Flash":     flash.Get(c),
	})
}

func HandleAuthActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	fm := fiber.Map{
		"type": "error",
	}

	if token == "" {
		fm["message"] = "activation token is missing"

		return flash.WithError(c, fm).Redirect("/login")
	}

	var user models.User
	result := database.GetDB().Where("activation_token = ?", token).First(&user)
	if result.Error != nil {
		fm["message"] = "invalid activation token"

		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := database.GetDB().Save(&user).Error; err != nil {
		fm["message"] = "activation failed, please try again"

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Account activated. You can log in now.",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}
