package org

import "crewbase.org/internal/uc"

// UseCases bundles every registered use case for transport wiring.
type UseCases struct {
	CreateUser *uc.UseCase[CreateUserInput, User]
	GetUser    *uc.UseCase[GetUserInput, User]
	UpdateUser *uc.UseCase[UpdateUserInput, User]
	DeleteUser *uc.UseCase[DeleteUserInput, User]
	ListUsers  *uc.UseCase[ListUsersInput, []User]

	CreateOrganization *uc.UseCase[CreateOrganizationInput, Organization]
	GetOrganization    *uc.UseCase[GetOrganizationInput, Organization]
	UpdateOrganization *uc.UseCase[UpdateOrganizationInput, Organization]
	DeleteOrganization *uc.UseCase[DeleteOrganizationInput, Organization]
	ListOrganizations  *uc.UseCase[ListOrganizationsInput, []Organization]

	AddMember         *uc.UseCase[AddMemberInput, Membership]
	AcceptInvitation  *uc.UseCase[AcceptInvitationInput, Membership]
	UpdateMemberRole  *uc.UseCase[UpdateMemberRoleInput, Membership]
	LeaveOrganization *uc.UseCase[LeaveOrganizationInput, Membership]
	RemoveMember      *uc.UseCase[RemoveMemberInput, Membership]
	TransferOwnership *uc.UseCase[TransferOwnershipInput, Organization]
	ListMembers       *uc.UseCase[ListMembersInput, []Membership]
}

// NewUseCases registers the full catalogue against one adapter bundle.
func NewUseCases(reg *uc.Registry, ad *uc.Adapters) *UseCases {
	return &UseCases{
		CreateUser: NewCreateUser(reg, ad),
		GetUser:    NewGetUser(reg, ad),
		UpdateUser: NewUpdateUser(reg, ad),
		DeleteUser: NewDeleteUser(reg, ad),
		ListUsers:  NewListUsers(reg, ad),

		CreateOrganization: NewCreateOrganization(reg, ad),
		GetOrganization:    NewGetOrganization(reg, ad),
		UpdateOrganization: NewUpdateOrganization(reg, ad),
		DeleteOrganization: NewDeleteOrganization(reg, ad),
		ListOrganizations:  NewListOrganizations(reg, ad),

		AddMember:         NewAddMember(reg, ad),
		AcceptInvitation:  NewAcceptInvitation(reg, ad),
		UpdateMemberRole:  NewUpdateMemberRole(reg, ad),
		LeaveOrganization: NewLeaveOrganization(reg, ad),
		RemoveMember:      NewRemoveMember(reg, ad),
		TransferOwnership: NewTransferOwnership(reg, ad),
		ListMembers:       NewListMembers(reg, ad),
	}
}
