package permissions

// Action 模型操作
type Action string

const (
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// Actions 每个模型注册的全部操作
var Actions = []Action{ActionAdd, ActionChange, ActionDelete, ActionView}

// 应用与模型标识
const (
	AppAuth     = "auth"
	AppCrawler  = "crawler"
	AppOAuth    = "oauth2_provider"
	AppVersions = "reversion"
	AppToolinfo = "toolinfo"
	AppLists    = "lists"
	AppUser     = "user"

	ModelGroup       = "group"
	ModelURL         = "url"
	ModelRun         = "run"
	ModelRunURL      = "runurl"
	ModelApplication = "application"
	ModelAccessToken = "accesstoken"
	ModelVersion     = "version"
	ModelTool        = "tool"
	ModelToolList    = "toollist"
	ModelUser        = "toolhubuser"
)

// ModelPermissions 单个模型的操作谓词，未配置的操作视为 AlwaysDeny
type ModelPermissions struct {
	Model string
	Perms map[Action]*Predicate
}

// Predicate 返回操作对应的谓词
func (m ModelPermissions) Predicate(action Action) *Predicate {
	if p, ok := m.Perms[action]; ok && p != nil {
		return p
	}
	return AlwaysDeny
}

// AppPermissions 单个应用下的模型权限
type AppPermissions struct {
	App    string
	Models []ModelPermissions
}

// Table 有序的权限配置表，CASL 规则按此顺序输出
type Table []AppPermissions

// Lookup 查找应用/模型的权限配置
func (t Table) Lookup(app, modelName string) (ModelPermissions, bool) {
	for _, a := range t {
		if a.App != app {
			continue
		}
		for _, m := range a.Models {
			if m.Model == modelName {
				return m, true
			}
		}
	}
	return ModelPermissions{}, false
}

// DefaultTable Toolhub 的模型权限配置
var DefaultTable = Table{
	{
		App: AppAuth,
		Models: []ModelPermissions{
			{Model: ModelGroup, Perms: map[Action]*Predicate{
				ActionAdd:    IsAdministrator,
				ActionChange: IsAdminOrCrat,
				ActionDelete: IsAdminOrCrat,
				ActionView:   AlwaysAllow,
			}},
		},
	},
	{
		App: AppCrawler,
		Models: []ModelPermissions{
			{Model: ModelURL, Perms: map[Action]*Predicate{
				ActionAdd:    IsAuthenticated,
				ActionChange: IsObjCreatorOrAdmin,
				ActionDelete: IsObjCreatorOrAdmin,
				ActionView:   AlwaysAllow,
			}},
			{Model: ModelRun, Perms: map[Action]*Predicate{
				ActionView: AlwaysAllow,
			}},
			{Model: ModelRunURL, Perms: map[Action]*Predicate{
				ActionView: AlwaysAllow,
			}},
		},
	},
	{
		App: AppOAuth,
		Models: []ModelPermissions{
			{Model: ModelApplication, Perms: map[Action]*Predicate{
				ActionAdd:    IsAuthenticated,
				ActionChange: IsObjUserOrAdmin,
				ActionDelete: IsObjUserOrAdmin,
				ActionView:   AlwaysAllow,
			}},
			{Model: ModelAccessToken, Perms: map[Action]*Predicate{
				ActionView:   IsObjUserOrAdmin,
				ActionDelete: IsObjUserOrAdmin,
			}},
		},
	},
	{
		App: AppVersions,
		Models: []ModelPermissions{
			{Model: ModelVersion, Perms: map[Action]*Predicate{
				ActionAdd:  IsAuthenticated,
				ActionView: AlwaysAllow,
			}},
		},
	},
	{
		App: AppToolinfo,
		Models: []ModelPermissions{
			{Model: ModelTool, Perms: map[Action]*Predicate{
				ActionAdd:    IsAuthenticated,
				ActionChange: IsObjCreatorOrAdmin,
				ActionDelete: IsObjCreatorOrAdmin,
				ActionView:   AlwaysAllow,
			}},
		},
	},
	{
		App: AppLists,
		Models: []ModelPermissions{
			{Model: ModelToolList, Perms: map[Action]*Predicate{
				ActionAdd:    IsAuthenticated,
				ActionChange: IsObjCreatorOrAdmin,
				ActionDelete: IsObjCreatorOrAdmin,
				ActionView:   AlwaysAllow,
			}},
		},
	},
	{
		App: AppUser,
		Models: []ModelPermissions{
			{Model: ModelUser, Perms: map[Action]*Predicate{
				ActionAdd:    AlwaysDeny,
				ActionChange: IsSelfOrAdmin,
				ActionDelete: IsSelfOrAdmin,
				ActionView:   AlwaysAllow,
			}},
		},
	},
}
