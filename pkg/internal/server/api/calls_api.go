package api

import (
	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/callspace/conferencing/pkg/internal/server/exts"
	"github.com/callspace/conferencing/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

// mapCallError translates the coordinator's error kinds into HTTP status
// codes; unknown errors stay internal.
func mapCallError(err error) error {
	switch models.ErrorKind(err) {
	case models.ErrKindArgument:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case models.ErrKindNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case models.ErrKindConflict:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func createCall(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)

	var data services.CreateCallRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if call, err := services.Calls.CreateCall(data, user); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func getCall(c *fiber.Ctx) error {
	if call, err := services.Calls.GetCall(c.Params("callId")); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func updateCall(c *fiber.Ctx) error {
	var data services.UpdateCallRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if call, err := services.Calls.UpdateCall(c.Params("callId"), data); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func startCall(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)
	client := c.Locals("clientId").(string)

	if call, err := services.Calls.StartCall(c.Params("callId"), user, client); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func joinCall(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)
	client := c.Locals("clientId").(string)

	if call, err := services.Calls.JoinCall(c.Params("callId"), user, client); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func leaveCall(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)
	client := c.Locals("clientId").(string)

	call, err := services.Calls.LeaveCall(c.Params("callId"), user, client)
	if err != nil {
		return mapCallError(err)
	} else if call == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(call)
}

func stopCall(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)
	remove := c.QueryBool("remove", false)

	if call, err := services.Calls.StopCall(c.Params("callId"), user, remove); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func exchangeCallToken(c *fiber.Ctx) error {
	user := c.Locals("userId").(string)

	call, err := services.Calls.GetCall(c.Params("callId"))
	if err != nil {
		return mapCallError(err)
	}

	provider := services.Providers.GetProvider(call.ProviderType)
	if provider == nil {
		return fiber.NewError(fiber.StatusBadRequest, "call provider is not available")
	}

	moderator := call.OwnerID == user || !call.IsGroup
	tk, err := provider.JoinToken(call, user, moderator)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"token":    tk,
		"provider": call.ProviderType,
	})
}

func getInviteToken(c *fiber.Ctx) error {
	call, err := services.Calls.GetCall(c.Params("callId"))
	if err != nil {
		return mapCallError(err)
	}
	if call.InviteID == "" {
		return fiber.NewError(fiber.StatusNotFound, "call has no open invitation")
	}

	tk, err := services.EncodeInviteToken(call.ID, call.InviteID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"token": tk})
}

func checkInvite(c *fiber.Ctx) error {
	if call, err := services.Calls.CheckInvite(c.Params("token")); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(call)
	}
}

func listCallInvites(c *fiber.Ctx) error {
	if invites, err := services.Calls.ListCallInvites(c.Params("callId")); err != nil {
		return mapCallError(err)
	} else {
		return c.JSON(invites)
	}
}

func addParticipant(c *fiber.Ctx) error {
	var data struct {
		ParticipantID string `json:"participant_id" validate:"required,max=255"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.Calls.AddParticipant(c.Params("callId"), data.ParticipantID); err != nil {
		return mapCallError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func updateParticipants(c *fiber.Ctx) error {
	var data struct {
		Participants []string `json:"participants" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.Calls.UpdateParticipants(c.Params("callId"), data.Participants); err != nil {
		return mapCallError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func addGuest(c *fiber.Ctx) error {
	var data struct {
		GuestID string `json:"guest_id" validate:"required,max=255"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.Calls.AddGuest(c.Params("callId"), data.GuestID); err != nil {
		return mapCallError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
