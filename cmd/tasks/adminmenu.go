package main

import (
	"fmt"
	"sort"

	"github.com/Hussein-Mazeh/TaskTracker/internal/colors"
	dbpkg "github.com/Hussein-Mazeh/TaskTracker/internal/db"
	"github.com/Hussein-Mazeh/TaskTracker/internal/task"
)

func (a *app) adminMenu(username string) error {
	for {
		clearScreen()
		fmt.Println(colors.Border("=============================================="))
		fmt.Println(colors.Title(fmt.Sprintf("        Admin Panel - %s", username)))
		fmt.Println(colors.Border("=============================================="))
		fmt.Println(colors.Green + "  1. " + colors.White + "List users" + colors.Reset)
		fmt.Println(colors.Green + "  2. " + colors.White + "List all tasks" + colors.Reset)
		fmt.Println(colors.Green + "  3. " + colors.White + "List all pending tasks" + colors.Reset)
		fmt.Println(colors.Green + "  4. " + colors.White + "List all completed tasks" + colors.Reset)
		fmt.Println(colors.Green + "  5. " + colors.White + "List all unfinished tasks" + colors.Reset)
		fmt.Println(colors.Blue + "  6. " + colors.White + "Global statistics" + colors.Reset)
		fmt.Println(colors.Blue + "  7. " + colors.White + "Statistics per user" + colors.Reset)
		fmt.Println(colors.Magenta + "  8. " + colors.White + "Create admin" + colors.Reset)
		fmt.Println(colors.Magenta + "  9. " + colors.White + "My tasks" + colors.Reset)
		fmt.Println(colors.Red + "  0. " + colors.White + "Logout" + colors.Reset)
		fmt.Println(colors.Border("=============================================="))

		choice, err := a.readLine(colors.Prompt("Enter your choice: "))
		if err != nil {
			return err
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = a.listUsers()
		case "2":
			actionErr = a.listAllTasks(func(tasks []task.Task) []task.Task { return tasks }, "All Tasks")
		case "3":
			actionErr = a.listAllTasks(task.Pending, "All Pending Tasks")
		case "4":
			actionErr = a.listAllTasks(task.Completed, "All Completed Tasks")
		case "5":
			actionErr = a.listAllUnfinished()
		case "6":
			actionErr = a.showGlobalStats()
		case "7":
			actionErr = a.showStatsPerUser()
		case "8":
			actionErr = a.registerFlow(true)
		case "9":
			return a.userMenu(username)
		case "0":
			return nil
		default:
			fmt.Println(colors.Error("\nPlease choose an option between 0 and 9."))
		}
		if actionErr != nil {
			return actionErr
		}
		a.pause()
	}
}

func (a *app) listUsers() error {
	names, err := a.svc.Usernames()
	if err != nil {
		a.log.Error("list users failed", "err", err)
		fmt.Println(colors.Error("Could not load users. Try again later."))
		return nil
	}
	sort.Strings(names)

	fmt.Println(colors.Title("\n--- Registered Users ---"))
	if len(names) == 0 {
		fmt.Println(colors.Warning("No users registered."))
		return nil
	}
	for i, name := range names {
		fmt.Printf("%s %s%s%s\n", colors.Info(fmt.Sprintf("%d.", i+1)), colors.White, name, colors.Reset)
	}
	return nil
}

func (a *app) listAllTasks(keep func([]task.Task) []task.Task, heading string) error {
	tasks, err := dbpkg.GetAllTasks(a.db)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}
	displayTaskList(keep(tasks), heading, true)
	return nil
}

func (a *app) listAllUnfinished() error {
	tasks, err := dbpkg.GetAllTasks(a.db)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}
	unfinished := task.SortByDeadline(task.Overdue(tasks, today()))
	displayTaskList(unfinished, "All Unfinished Tasks", true)
	if len(unfinished) > 0 {
		fmt.Println(colors.Error(fmt.Sprintf("\nTotal unfinished tasks: %d", len(unfinished))))
	}
	return nil
}

func (a *app) showGlobalStats() error {
	tasks, err := dbpkg.GetAllTasks(a.db)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}
	names, err := a.svc.Usernames()
	if err != nil {
		a.log.Error("list users failed", "err", err)
		fmt.Println(colors.Error("Could not load users. Try again later."))
		return nil
	}

	fmt.Println(colors.Title("\n--- Global Statistics ---"))
	fmt.Printf("%sTotal users:%s %s%d%s\n", colors.White, colors.Reset, colors.Cyan, len(names), colors.Reset)
	displayStats(task.Summarize(tasks, today()), "All Users")
	return nil
}

func (a *app) showStatsPerUser() error {
	tasks, err := dbpkg.GetAllTasks(a.db)
	if err != nil {
		a.log.Error("load tasks failed", "err", err)
		fmt.Println(colors.Error("Could not load tasks. Try again later."))
		return nil
	}

	byUser := make(map[string][]task.Task)
	for _, t := range tasks {
		byUser[t.Username] = append(byUser[t.Username], t)
	}
	owners := make([]string, 0, len(byUser))
	for owner := range byUser {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	if len(owners) == 0 {
		fmt.Println(colors.Warning("\nNo tasks found for any user."))
		return nil
	}
	for _, owner := range owners {
		displayStats(task.Summarize(byUser[owner], today()), fmt.Sprintf("Statistics for %s", owner))
	}
	return nil
}
