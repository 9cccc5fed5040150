package service

import (
	"strings"

	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
)

// IdentityResolver 把人员标识解析为可指派的账号标识
type IdentityResolver interface {
	Resolve(personID string) (string, error)
}

// EmployeeIdentityResolver 默认实现：含 @ 的标识按用户邮箱直接校验，
// 否则按员工工号查其关联用户
type EmployeeIdentityResolver struct {
	userRepo *repository.UserRepository
}

func NewEmployeeIdentityResolver(userRepo *repository.UserRepository) *EmployeeIdentityResolver {
	return &EmployeeIdentityResolver{userRepo: userRepo}
}

func (r *EmployeeIdentityResolver) Resolve(personID string) (string, error) {
	if strings.Contains(personID, "@") {
		user, err := r.userRepo.GetUserByEmail(personID)
		if err != nil {
			return "", wrapBizError(FailureReferenceNotFound, err, "用户不存在: %s", personID)
		}
		return user.Email, nil
	}
	emp, err := r.userRepo.GetEmployeeByCode(personID)
	if err != nil {
		return "", wrapBizError(FailureReferenceNotFound, err, "员工不存在: %s", personID)
	}
	if emp.UserEmail == "" {
		return "", newBizError(FailureResolution, "员工 %s 未关联系统用户", personID)
	}
	return emp.UserEmail, nil
}
