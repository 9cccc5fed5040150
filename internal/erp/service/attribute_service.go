package service

import (
	"strings"

	"github.com/guinanlin/rongguan-erp/internal/erp/repository"
)

// Resolution 变体属性解析结果
type Resolution struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// AttributeService 依据属性主数据的标签约定，把变体属性映射为颜色/尺码
type AttributeService struct {
	itemRepo *repository.ItemRepository
	colorTag string
	sizeTag  string
}

func NewAttributeService(itemRepo *repository.ItemRepository, colorTag, sizeTag string) *AttributeService {
	if colorTag == "" {
		colorTag = "颜色"
	}
	if sizeTag == "" {
		sizeTag = "尺码"
	}
	return &AttributeService{itemRepo: itemRepo, colorTag: colorTag, sizeTag: sizeTag}
}

// Resolve 按属性声明顺序解析颜色与尺码
func (s *AttributeService) Resolve(itemCode string) (*Resolution, error) {
	return s.ResolveWith(s.itemRepo, itemCode)
}

// ResolveWith 使用指定仓库解析（事务内读取用）。
// 每类属性取声明顺序里第一个命中的，后续同类属性忽略；
// 标签同时含两种标记词时优先判为颜色。属性主数据缺失的行不参与判定。
func (s *AttributeService) ResolveWith(itemRepo *repository.ItemRepository, itemCode string) (*Resolution, error) {
	item, err := itemRepo.GetByCode(itemCode)
	if err != nil {
		return nil, wrapBizError(FailureReferenceNotFound, err, "物料不存在: %s", itemCode)
	}

	res := &Resolution{}
	for _, attr := range item.Attributes {
		master, err := itemRepo.GetAttributeByName(attr.Attribute)
		if err != nil {
			continue
		}
		if res.Color == "" && strings.Contains(master.Tags, s.colorTag) {
			res.Color = attr.AttributeValue
			continue
		}
		if res.Size == "" && strings.Contains(master.Tags, s.sizeTag) {
			res.Size = attr.AttributeValue
		}
	}
	return res, nil
}
