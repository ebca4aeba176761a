package tracker

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.Create(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "tracker": t})
	})

	r.Get("/email/:email", func(c *fiber.Ctx) error {
		trackers, err := svc.ListByEmail(c.Context(), c.Params("email"))
		if err != nil {
			return err
		}
		if trackers == nil {
			trackers = []Summary{}
		}
		return c.JSON(fiber.Map{"success": true, "trackers": trackers})
	})

	r.Get("/:token/validate", func(c *fiber.Ctx) error {
		verdict, err := svc.Validate(c.Context(), c.Params("token"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "valid": verdict.Valid, "reason": verdict.Reason})
	})

	r.Get("/:token", func(c *fiber.Ctx) error {
		res, err := svc.Read(c.Context(), c.Params("token"), c.Query("email"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "tracker": res.Tracker, "trip": res.Trip})
	})

	r.Put("/:token", func(c *fiber.Ctx) error {
		var req UpdateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.Update(c.Context(), c.Params("token"), req, c.Query("email"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "tracker": t})
	})

	r.Delete("/:token", func(c *fiber.Ctx) error {
		if err := svc.Deactivate(c.Context(), c.Params("token"), c.Query("email")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
