package models

import "time"

// Board types
const (
	BoardTypeInstitutional     = "institutional"      // one per tenant
	BoardTypeDepartmentCouncil = "department_council" // one per department
)

// Board-level roles (board_members.role)
const (
	BoardRoleCoordinator       = "coordinator"
	BoardRoleMainReviewer      = "main_reviewer"
	BoardRoleAssociateReviewer = "associate_reviewer"
	BoardRoleStatistician      = "statistician"
)

// Board represents an ethics review body: the tenant-wide IRB or a
// department research council.
type Board struct {
	BoardID      int        `gorm:"primaryKey;column:board_id" json:"board_id"`
	TenantID     int        `gorm:"column:tenant_id" json:"tenant_id"`
	DepartmentID *int       `gorm:"column:department_id" json:"department_id,omitempty"`
	BoardName    string     `gorm:"column:board_name" json:"board_name"`
	BoardType    string     `gorm:"column:board_type" json:"board_type"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Members []BoardMember `gorm:"foreignKey:BoardID;references:BoardID" json:"members,omitempty"`
}

// BoardMember assigns a board-level role to a user. A user may hold several
// roles on the same board as distinct rows, never the same role twice.
type BoardMember struct {
	MemberID  int        `gorm:"primaryKey;column:member_id" json:"member_id"`
	TenantID  int        `gorm:"column:tenant_id" json:"tenant_id"`
	BoardID   int        `gorm:"column:board_id" json:"board_id"`
	UserID    int        `gorm:"column:user_id" json:"user_id"`
	Role      string     `gorm:"column:role" json:"role"`
	IsActive  bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Board) TableName() string {
	return "boards"
}

func (BoardMember) TableName() string {
	return "board_members"
}
