package group

import (
	"strings"
	"testing"

	"live_chat_server/internal/dao/mysql/dbtest"
	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/enum/group_member/group_role_enum"
	"live_chat_server/pkg/errorx"
)

func setup(t *testing.T) (*groupService, *repository.Repositories) {
	t.Helper()
	repos := dbtest.New(t)
	dbtest.SeedUser(t, repos, "u1", "alice")
	dbtest.SeedUser(t, repos, "u2", "bob")
	dbtest.SeedUser(t, repos, "u3", "carol")
	return NewGroupService(repos), repos
}

func TestCreateGroupCreatorIsAdmin(t *testing.T) {
	svc, repos := setup(t)

	detail, err := svc.CreateGroup("u1", request.CreateGroupRequest{
		Name:      " team ",
		MemberIds: []string{"u2", "u2", "u1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if detail.Name != "team" || detail.CreatorId != "u1" || detail.Role != group_role_enum.Admin {
		t.Fatalf("detail = %+v", detail.GroupRespond)
	}
	if !strings.HasPrefix(detail.Avatar, "https://ui-avatars.com/api/") {
		t.Fatalf("avatar = %s", detail.Avatar)
	}

	got := map[string]string{}
	for _, m := range detail.Members {
		got[m.UserId] = m.Role
	}
	if len(got) != 2 || got["u1"] != group_role_enum.Admin || got["u2"] != group_role_enum.Member {
		t.Fatalf("members = %v", got)
	}

	ids, _ := repos.GroupMember.FindGroupIdsByUser("u2")
	if len(ids) != 1 || ids[0] != detail.GroupId {
		t.Fatalf("u2 groups = %v", ids)
	}
}

func TestCreateGroupUnknownMemberRollsBack(t *testing.T) {
	svc, repos := setup(t)
	_, err := svc.CreateGroup("u1", request.CreateGroupRequest{Name: "team", MemberIds: []string{"ghost"}})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("err = %v", err)
	}
	ids, _ := repos.GroupMember.FindGroupIdsByUser("u1")
	if len(ids) != 0 {
		t.Fatalf("group created anyway: %v", ids)
	}
}

func TestAddMemberAdminOnlyAndNoDuplicates(t *testing.T) {
	svc, _ := setup(t)
	detail, _ := svc.CreateGroup("u1", request.CreateGroupRequest{Name: "team", MemberIds: []string{"u2"}})

	if _, err := svc.AddMember("u2", detail.GroupId, "u3"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member add err = %v", err)
	}
	if _, err := svc.AddMember("u1", detail.GroupId, "u2"); errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("duplicate add err = %v", err)
	}
	added, err := svc.AddMember("u1", detail.GroupId, "u3")
	if err != nil || added.UserId != "u3" || added.Role != group_role_enum.Member {
		t.Fatalf("add = %+v, %v", added, err)
	}
}

func TestRemoveMemberAndLeave(t *testing.T) {
	svc, _ := setup(t)
	detail, _ := svc.CreateGroup("u1", request.CreateGroupRequest{Name: "team", MemberIds: []string{"u2", "u3"}})

	if err := svc.RemoveMember("u2", detail.GroupId, "u3"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member kick err = %v", err)
	}
	if err := svc.RemoveMember("u1", detail.GroupId, "u3"); err != nil {
		t.Fatalf("admin kick: %v", err)
	}
	if err := svc.LeaveGroup("u2", detail.GroupId); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := svc.LeaveGroup("u2", detail.GroupId); errorx.GetCode(err) != errorx.CodeForbidden && errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("second leave err = %v", err)
	}
	if _, err := svc.GetGroupDetails("u2", detail.GroupId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("details after leave err = %v", err)
	}
}

func TestGetUserGroupsIncludesLastMessage(t *testing.T) {
	svc, repos := setup(t)
	detail, _ := svc.CreateGroup("u1", request.CreateGroupRequest{Name: "team"})
	if err := repos.Message.Create(&model.Message{Uuid: "m1", SendId: "u1", GroupId: detail.GroupId, Content: "hello"}); err != nil {
		t.Fatalf("message: %v", err)
	}

	groups, err := svc.GetUserGroups("u1")
	if err != nil || len(groups) != 1 {
		t.Fatalf("groups = %+v, %v", groups, err)
	}
	if groups[0].LastMessage == nil || groups[0].LastMessage.Content != "hello" {
		t.Fatalf("last message = %+v", groups[0].LastMessage)
	}
}
