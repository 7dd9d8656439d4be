// Package model 提供数据模型
package model

// 所有模型的统一导入点
// 用于 AutoMigrate，按外键依赖顺序排列
var AllModels = []interface{}{
	&Dataset{},
	&Generation{},
	&Evaluation{},
}
