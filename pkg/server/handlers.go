package server

import (
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/letter"
	"github.com/pkg/errors"
)

// PDFFilename is the download name of every rendered letter.
const PDFFilename = "cover_letter.pdf"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// LetterBody carries letter text for edits and direct rendering.
type LetterBody struct {
	Letter string `json:"letter"`
}

func (s *Server) handleHealth(c *fiber.Ctx) (err error) {
	err = c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"model":  s.generator.Model(),
		"drafts": s.drafts.Count(),
	})
	return err
}

func (s *Server) handleCreateLetter(c *fiber.Ctx) (err error) {
	if !s.limiter.Allow() {
		err = writeError(c, fiber.StatusTooManyRequests, "too many generation requests, try again shortly")
		return err
	}

	var resumePDF []byte
	resumePDF, err = s.readResume(c)
	if err != nil {
		err = writeError(c, fiber.StatusBadRequest, err.Error())
		return err
	}

	req := coverletter.Request{
		ResumePDF:      resumePDF,
		JobDescription: c.FormValue("job_description"),
		CompanyAddress: c.FormValue("company_address"),
	}

	var draft coverletter.Draft
	draft, err = s.generator.Generate(c.UserContext(), req)
	if err != nil {
		err = writePipelineError(c, err)
		return err
	}

	stored := s.drafts.Save(draft)
	err = c.Status(fiber.StatusCreated).JSON(stored)
	return err
}

func (s *Server) handleGetLetter(c *fiber.Ctx) (err error) {
	stored, ok := s.drafts.Get(c.Params("id"))
	if !ok {
		err = writeError(c, fiber.StatusNotFound, "draft not found")
		return err
	}

	err = c.Status(fiber.StatusOK).JSON(stored)
	return err
}

func (s *Server) handleUpdateLetter(c *fiber.Ctx) (err error) {
	var body LetterBody
	err = c.BodyParser(&body)
	if err != nil {
		err = writeError(c, fiber.StatusBadRequest, "request body must be JSON with a letter field")
		return err
	}

	text := letter.Sanitize(body.Letter)
	if text == "" {
		err = writeError(c, fiber.StatusBadRequest, "letter text is empty")
		return err
	}

	stored, ok := s.drafts.Replace(c.Params("id"), text, s.now())
	if !ok {
		err = writeError(c, fiber.StatusNotFound, "draft not found")
		return err
	}

	err = c.Status(fiber.StatusOK).JSON(stored)
	return err
}

func (s *Server) handleDeleteLetter(c *fiber.Ctx) (err error) {
	if !s.drafts.Delete(c.Params("id")) {
		err = writeError(c, fiber.StatusNotFound, "draft not found")
		return err
	}

	err = c.SendStatus(fiber.StatusNoContent)
	return err
}

func (s *Server) handleLetterPDF(c *fiber.Ctx) (err error) {
	stored, ok := s.drafts.Get(c.Params("id"))
	if !ok {
		err = writeError(c, fiber.StatusNotFound, "draft not found")
		return err
	}

	err = s.sendPDF(c, stored.Letter)
	return err
}

func (s *Server) handleRenderPDF(c *fiber.Ctx) (err error) {
	var body LetterBody
	err = c.BodyParser(&body)
	if err != nil {
		err = writeError(c, fiber.StatusBadRequest, "request body must be JSON with a letter field")
		return err
	}

	err = s.sendPDF(c, body.Letter)
	return err
}

func (s *Server) sendPDF(c *fiber.Ctx, letterText string) (err error) {
	var pdfBytes []byte
	pdfBytes, err = s.generator.Render(letterText)
	if err != nil {
		err = writePipelineError(c, err)
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+PDFFilename+`"`)
	err = c.Status(fiber.StatusOK).Send(pdfBytes)
	return err
}

// readResume returns the uploaded résumé PDF.
func (s *Server) readResume(c *fiber.Ctx) (data []byte, err error) {
	fh, formErr := c.FormFile("resume")
	if formErr != nil || fh == nil {
		err = errors.New("resume PDF upload is required")
		return data, err
	}

	if strings.ToLower(filepath.Ext(fh.Filename)) != ".pdf" {
		err = errors.Errorf("resume must be a PDF, got %s", fh.Filename)
		return data, err
	}

	if s.maxUpload > 0 && fh.Size > s.maxUpload {
		err = errors.Errorf("resume exceeds the %d byte upload limit", s.maxUpload)
		return data, err
	}

	var file multipart.File
	file, err = fh.Open()
	if err != nil {
		err = errors.Wrap(err, "failed to open uploaded resume")
		return data, err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		err = errors.Wrap(err, "failed to read uploaded resume")
		return data, err
	}

	return data, err
}

func writeError(c *fiber.Ctx, status int, message string) (err error) {
	err = c.Status(status).JSON(ErrorResponse{Message: message})
	return err
}

func writePipelineError(c *fiber.Ctx, pipelineErr error) (err error) {
	err = writeError(c, statusFor(pipelineErr), pipelineErr.Error())
	return err
}

// statusFor maps pipeline error kinds to HTTP status codes.
func statusFor(err error) (status int) {
	switch {
	case errors.Is(err, coverletter.ErrInputValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, coverletter.ErrGeneration):
		status = fiber.StatusBadGateway
	default:
		status = fiber.StatusInternalServerError
	}
	return status
}

func (s *Server) handleFiberError(c *fiber.Ctx, err error) (handlerErr error) {
	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	s.logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
	handlerErr = writeError(c, status, err.Error())
	return handlerErr
}
