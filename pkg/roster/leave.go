package roster

import "github.com/yipai/yipai/pkg/model"

// LeaveIndex 休假索引：每人的不可排日集合
// 三类休假（预假/补休/特休）在约束层面统一处理
type LeaveIndex struct {
	byPerson map[int]map[int]bool
}

// NewLeaveIndex 从人员列表构建休假索引
func NewLeaveIndex(personnel []model.Person) *LeaveIndex {
	idx := &LeaveIndex{byPerson: make(map[int]map[int]bool, len(personnel))}
	for i := range personnel {
		p := &personnel[i]
		idx.byPerson[p.ID] = p.UnavailableDays()
	}
	return idx
}

// Unavailable 某人在第 d 天是否不可排
func (idx *LeaveIndex) Unavailable(personID, day int) bool {
	return idx.byPerson[personID][day]
}

// Days 某人的不可排日集合
func (idx *LeaveIndex) Days(personID int) map[int]bool {
	return idx.byPerson[personID]
}

// Count 某人的不可排日数
func (idx *LeaveIndex) Count(personID int) int {
	return len(idx.byPerson[personID])
}
