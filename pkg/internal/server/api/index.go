package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string, authMiddleware fiber.Handler) {
	api := app.Group(baseURL).Name("API")
	{
		api.Get("/users/me/calls", authMiddleware, getUserCalls)

		calls := api.Group("/calls").Name("Calls API")
		{
			calls.Post("/", authMiddleware, createCall)
			calls.Get("/invite/:token", checkInvite)
			calls.Get("/:callId", authMiddleware, getCall)
			calls.Put("/:callId", authMiddleware, updateCall)
			calls.Delete("/:callId", authMiddleware, stopCall)

			calls.Post("/:callId/start", authMiddleware, startCall)
			calls.Post("/:callId/join", authMiddleware, joinCall)
			calls.Post("/:callId/leave", authMiddleware, leaveCall)
			calls.Post("/:callId/token", authMiddleware, exchangeCallToken)

			calls.Get("/:callId/invite", authMiddleware, getInviteToken)
			calls.Get("/:callId/invites", authMiddleware, listCallInvites)
			calls.Post("/:callId/participants", authMiddleware, addParticipant)
			calls.Put("/:callId/participants", authMiddleware, updateParticipants)
			calls.Post("/:callId/guests", authMiddleware, addGuest)
		}

		providers := api.Group("/providers").Name("Providers API")
		{
			providers.Get("/", listProviderConfigs)
			providers.Put("/:providerType", authMiddleware, saveProviderConfig)
		}

		api.Get("/unified", authMiddleware, websocket.New(unifiedGateway))
	}
}
