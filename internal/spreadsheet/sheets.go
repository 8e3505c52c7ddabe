package spreadsheet

import (
	"fmt"
	"time"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Sheet labels; they prefix exported and template file names.
const (
	StrainLabel = "菌种保藏"
	MemberLabel = "成员名单"
	DutyLabel   = "卫生值日"
	MediumLabel = "培养基推荐"
	ThesisLabel = "毕业论文"
)

// DefaultStrainKind fills an empty strain type on import.
const DefaultStrainKind = domain.DefaultStrainKind

var (
	mediumKinds = NewEnum(string(domain.MediumLiquid), "液体发酵", string(domain.MediumSolid), "固体培养")
	dutyStates  = NewEnum(string(domain.DutyPending), "待执行", string(domain.DutyCompleted), "已完成", string(domain.DutySkipped), "已跳过")
)

// Label returns the sheet label of entity.
func Label(entity domain.EntityType) (string, error) {
	switch entity {
	case domain.EntityStrain:
		return StrainLabel, nil
	case domain.EntityMember:
		return MemberLabel, nil
	case domain.EntityDuty:
		return DutyLabel, nil
	case domain.EntityMedium:
		return MediumLabel, nil
	case domain.EntityThesis:
		return ThesisLabel, nil
	default:
		return "", fmt.Errorf("no sheet for %s", entity)
	}
}

func withExample[T any](c Column[T], example string) Column[T] {
	c.Example = example
	return c
}

func withDefault[T any](c Column[T], def string) Column[T] {
	c.Default = def
	c.Example = def
	return c
}

// StrainSheet maps strains.
func StrainSheet() Sheet[domain.Strain] {
	type S = domain.Strain
	return Sheet[S]{
		Entity: domain.EntityStrain,
		Label:  StrainLabel,
		Columns: []Column[S]{
			withExample(Text("菌种名称", []string{"name"}, func(s *S) *string { return &s.Name }), "示例菌种"),
			withExample(Text("学名", []string{"scientificName"}, func(s *S) *string { return &s.ScientificName }), "Saccharomyces cerevisiae"),
			withDefault(Text("类型", []string{"kind", "type"}, func(s *S) *string { return &s.Kind }), DefaultStrainKind),
			withExample(Text("来源", []string{"source"}, func(s *S) *string { return &s.Source }), "实验室分离"),
			withExample(Text("保藏方法", []string{"preservationMethod"}, func(s *S) *string { return &s.PreservationMethod }), "冷冻保存"),
			withExample(Text("保藏温度", []string{"preservationTemperature"}, func(s *S) *string { return &s.PreservationTemperature }), "-80°C"),
			withExample(Text("保藏位置", []string{"location"}, func(s *S) *string { return &s.Location }), "冰箱A-1"),
			withExample(Text("描述", []string{"description"}, func(s *S) *string { return &s.Description }), "示例描述信息"),
			withExample(Text("添加人", []string{"addedBy"}, func(s *S) *string { return &s.AddedBy }), "张三"),
			Timestamp("添加时间", func(s S) time.Time { return s.AddedAt }),
		},
	}
}

// MemberSheet maps members.
func MemberSheet() Sheet[domain.Member] {
	type M = domain.Member
	return Sheet[M]{
		Entity: domain.EntityMember,
		Label:  MemberLabel,
		Columns: []Column[M]{
			withExample(Text("姓名", []string{"name"}, func(m *M) *string { return &m.Name }), "张三"),
			withExample(Text("组别", []string{"group"}, func(m *M) *string { return &m.Group }), "功能组"),
			withExample(Text("电话", []string{"phone"}, func(m *M) *string { return &m.Phone }), "13800138000"),
			withExample(Text("年级", []string{"grade"}, func(m *M) *string { return &m.Grade }), "2023级"),
			withExample(Text("班级", []string{"class"}, func(m *M) *string { return &m.Class }), "生物技术1班"),
			withExample(Text("毕设内容", []string{"thesisContent"}, func(m *M) *string { return &m.ThesisContent }), "食用菌多糖提取工艺优化研究"),
			withExample(Text("其他信息", []string{"otherInfo"}, func(m *M) *string { return &m.OtherInfo }), "擅长分子生物学实验"),
			Timestamp("加入时间", func(m M) time.Time { return m.JoinedAt }),
		},
	}
}

// DutySheet maps duty schedules.
func DutySheet() Sheet[domain.DutySchedule] {
	type D = domain.DutySchedule
	date := Column[D]{
		Header:  "日期",
		Names:   []string{"date"},
		Example: "2024-03-07",
		Get:     func(d D) string { return string(d.Date) },
		Set: func(d *D, v string) error {
			if v == "" {
				return nil
			}
			day, err := domain.ParseDate(v)
			if err != nil {
				return err
			}
			d.Date = day
			return nil
		},
	}
	status := Column[D]{
		Header:  "状态",
		Names:   []string{"status"},
		Default: string(domain.DutyPending),
		Example: dutyStates.Label(string(domain.DutyPending)),
		Get:     func(d D) string { return dutyStates.Label(string(d.Status)) },
		Set: func(d *D, v string) error {
			s, err := dutyStates.Parse(v)
			d.Status = domain.DutyStatus(s)
			return err
		},
	}
	return Sheet[D]{
		Entity: domain.EntityDuty,
		Label:  DutyLabel,
		Columns: []Column[D]{
			date,
			withExample(List("值日人员", []string{"members"}, func(d *D) *[]string { return &d.Members }), "张三,李四"),
			withExample(List("值日任务", []string{"tasks"}, func(d *D) *[]string { return &d.Tasks }), "打扫实验台,清理垃圾"),
			status,
			withExample(Text("备注", []string{"notes"}, func(d *D) *string { return &d.Notes }), "下午三点前完成"),
			Timestamp("创建时间", func(d D) time.Time { return d.CreatedAt }),
		},
	}
}

// MediumSheet maps media. The suitable strain cell holds strain ids on
// export; imports may use strain names, resolved by the importer.
func MediumSheet() Sheet[domain.Medium] {
	type M = domain.Medium
	kind := Column[M]{
		Header:  "类型",
		Names:   []string{"kind", "type"},
		Default: string(domain.MediumSolid),
		Example: mediumKinds.Label(string(domain.MediumSolid)),
		Get:     func(m M) string { return mediumKinds.Label(string(m.Kind)) },
		Set: func(m *M, v string) error {
			k, err := mediumKinds.Parse(v)
			m.Kind = domain.MediumKind(k)
			return err
		},
	}
	return Sheet[M]{
		Entity: domain.EntityMedium,
		Label:  MediumLabel,
		Columns: []Column[M]{
			withExample(Text("培养基名称", []string{"name"}, func(m *M) *string { return &m.Name }), "PDA培养基"),
			kind,
			withExample(List("适用菌种", []string{"suitableStrainIds", "suitableStrains"}, func(m *M) *[]string { return &m.SuitableStrainIDs }), "平菇,香菇,金针菇"),
			withExample(Text("配方", []string{"formula"}, func(m *M) *string { return &m.Formula }), "马铃薯200g，葡萄糖20g，琼脂15g，蒸馏水1000ml"),
			withExample(Text("培养温度", []string{"temperature"}, func(m *M) *string { return &m.CultivationParams.Temperature }), "25°C"),
			withExample(Text("培养时间", []string{"time"}, func(m *M) *string { return &m.CultivationParams.Time }), "7天"),
			withExample(Text("pH值", []string{"ph"}, func(m *M) *string { return &m.CultivationParams.PH }), "6.0"),
			withExample(Text("其他参数", []string{"other"}, func(m *M) *string { return &m.CultivationParams.Other }), "避光培养"),
			withExample(Text("推荐人", []string{"recommendedBy"}, func(m *M) *string { return &m.RecommendedBy }), "李老师"),
			Timestamp("创建时间", func(m M) time.Time { return m.CreatedAt }),
		},
	}
}

// ThesisSheet maps theses.
func ThesisSheet() Sheet[domain.Thesis] {
	type T = domain.Thesis
	return Sheet[T]{
		Entity: domain.EntityThesis,
		Label:  ThesisLabel,
		Columns: []Column[T]{
			withExample(Text("论文题目", []string{"title"}, func(t *T) *string { return &t.Title }), "食用菌多糖的提取及其生物活性研究"),
			withExample(Text("作者", []string{"author"}, func(t *T) *string { return &t.Author }), "王小明"),
			withExample(Text("年级", []string{"grade"}, func(t *T) *string { return &t.Grade }), "2023级"),
			withExample(Text("班级", []string{"class"}, func(t *T) *string { return &t.Class }), "生物技术1班"),
			withExample(Text("其他内容", []string{"otherContent"}, func(t *T) *string { return &t.OtherContent }), "指导老师：刘教授"),
			Timestamp("创建时间", func(t T) time.Time { return t.CreatedAt }),
		},
	}
}
