package controller

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"project-echo-be/internal/dto"
	"project-echo-be/internal/pkg/serverutils"
	"project-echo-be/internal/service"
	"project-echo-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ListPersonas(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SetMode(ctx *fiber.Ctx) error
	SendTurn(ctx *fiber.Ctx) error
	DownloadBlueprint(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/personas", c.ListPersonas)
	h.Post("/session", c.CreateSession)
	h.Get("/session/:id", c.GetSession)
	h.Delete("/session/:id", c.DeleteSession)
	h.Put("/session/:id/mode", c.SetMode)
	h.Post("/session/:id/turn", c.SendTurn)
	h.Get("/session/:id/blueprint", c.DownloadBlueprint)
}

func (c *chatController) ListPersonas(ctx *fiber.Ctx) error {
	res := c.service.ListPersonas(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get personas", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *chatController) SetMode(ctx *fiber.Ctx) error {
	var req dto.SetModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Mode = strings.ToLower(strings.TrimSpace(req.Mode))

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetMode(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set mode", res))
}

// SendTurn accepts either JSON {"prompt"} or multipart with a "prompt" field
// and any number of "files".
func (c *chatController) SendTurn(ctx *fiber.Ctx) error {
	var (
		req   dto.SendTurnRequest
		files []extract.Upload
	)

	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := ctx.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if v := form.Value["prompt"]; len(v) > 0 {
			req.Prompt = v[0]
		}
		files, err = readUploads(form.File["files"])
		if err != nil {
			return err
		}
	} else if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendTurn(ctx.UserContext(), ctx.Params("id"), req.Prompt, files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send turn", res))
}

func (c *chatController) DownloadBlueprint(ctx *fiber.Ctx) error {
	file, err := c.service.DownloadBlueprint(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.Send(file.Content)
}

func readUploads(headers []*multipart.FileHeader) ([]extract.Upload, error) {
	uploads := make([]extract.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("open %s: %v", fh.Filename, err))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("read %s: %v", fh.Filename, err))
		}
		uploads = append(uploads, extract.Upload{
			Filename:  fh.Filename,
			MediaType: fh.Header.Get(fiber.HeaderContentType),
			Data:      data,
		})
	}
	return uploads, nil
}
